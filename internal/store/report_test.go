package store

import (
	"testing"

	"github.com/bantest04/Manager-KPI2026/internal/model"
)

func seedReportMember(t *testing.T, ms *MemberStore, name string) int64 {
	t.Helper()
	m, err := ms.Create(name, "#3b82f6", model.RoleRegular)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m.ID
}

func TestReportCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	rs := NewReportStore(db)

	memberID := seedReportMember(t, ms, "Vu")

	created, err := rs.Create(model.Report{
		MemberID:   memberID,
		ReportDate: "2025-11-03",
		Reach:      10,
		Responses:  3,
		Deals:      1,
		Revenue:    30_000_000,
		Product:    "Long Ma",
		Channel:    "Facebook",
		Warehouse:  "SG",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if created.ID == 0 {
		t.Error("created report has zero ID")
	}

	got, err := rs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got.Revenue != 30_000_000 {
		t.Errorf("Revenue = %d, want 30000000", got.Revenue)
	}
	if got.ReportDate != "2025-11-03" {
		t.Errorf("ReportDate = %q, want %q", got.ReportDate, "2025-11-03")
	}
}

func TestReportListFilter(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	rs := NewReportStore(db)

	vu := seedReportMember(t, ms, "Vu")
	quynh := seedReportMember(t, ms, "Quynh")

	rows := []model.Report{
		{MemberID: vu, ReportDate: "2025-11-01", Revenue: 10},
		{MemberID: vu, ReportDate: "2025-11-10", Revenue: 20},
		{MemberID: quynh, ReportDate: "2025-11-10", Revenue: 40},
		{MemberID: vu, ReportDate: "2025-11-20", Revenue: 80},
	}
	for _, r := range rows {
		if _, err := rs.Create(r); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	got, err := rs.List(ReportFilter{MemberID: vu, From: "2025-11-05", To: "2025-11-15"})
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(got))
	}
	if got[0].Revenue != 20 {
		t.Errorf("Revenue = %d, want 20", got[0].Revenue)
	}

	all, err := rs.List(ReportFilter{})
	if err != nil {
		t.Fatalf("list all reports: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("len(all) = %d, want 4", len(all))
	}
	// Newest date first.
	if all[0].ReportDate != "2025-11-20" {
		t.Errorf("all[0].ReportDate = %q, want %q", all[0].ReportDate, "2025-11-20")
	}
}

func TestReportUpdate(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	rs := NewReportStore(db)

	memberID := seedReportMember(t, ms, "Vu")
	created, err := rs.Create(model.Report{MemberID: memberID, ReportDate: "2025-11-03", Revenue: 100})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	created.Revenue = 250
	created.Status = "Delivered"
	updated, err := rs.Update(created.ID, *created)
	if err != nil {
		t.Fatalf("update report: %v", err)
	}
	if updated.Revenue != 250 {
		t.Errorf("Revenue = %d, want 250", updated.Revenue)
	}
	if updated.Status != "Delivered" {
		t.Errorf("Status = %q, want %q", updated.Status, "Delivered")
	}
}

func TestReportDelete(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMemberStore(db)
	rs := NewReportStore(db)

	memberID := seedReportMember(t, ms, "Vu")
	created, err := rs.Create(model.Report{MemberID: memberID, ReportDate: "2025-11-03"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}

	if err := rs.Delete(created.ID); err != nil {
		t.Fatalf("delete report: %v", err)
	}

	got, err := rs.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got != nil {
		t.Errorf("GetByID after delete = %+v, want nil", got)
	}
}
