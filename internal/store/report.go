package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/bantest04/Manager-KPI2026/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

const reportCols = `id, member_id, report_date, reach, responses, deals, revenue,
	product, channel, warehouse, order_code, order_date,
	customer_name, customer_link, address, phone, status, note,
	created_at, updated_at`

func scanReport(scanner interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	err := scanner.Scan(
		&r.ID, &r.MemberID, &r.ReportDate, &r.Reach, &r.Responses, &r.Deals, &r.Revenue,
		&r.Product, &r.Channel, &r.Warehouse, &r.OrderCode, &r.OrderDate,
		&r.CustomerName, &r.CustomerLink, &r.Address, &r.Phone, &r.Status, &r.Note,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReportStore) Create(r model.Report) (*model.Report, error) {
	result, err := s.db.Exec(
		`INSERT INTO reports (member_id, report_date, reach, responses, deals, revenue,
			product, channel, warehouse, order_code, order_date,
			customer_name, customer_link, address, phone, status, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MemberID, r.ReportDate, r.Reach, r.Responses, r.Deals, r.Revenue,
		r.Product, r.Channel, r.Warehouse, r.OrderCode, r.OrderDate,
		r.CustomerName, r.CustomerLink, r.Address, r.Phone, r.Status, r.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *ReportStore) GetByID(id int64) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return r, nil
}

// ReportFilter narrows List. MemberID 0 means all members; empty date
// strings mean unbounded. Dates are canonical YYYY-MM-DD so the string
// comparisons below are calendar comparisons.
type ReportFilter struct {
	MemberID int64
	From     string
	To       string
}

func (s *ReportStore) List(f ReportFilter) ([]model.Report, error) {
	var conds []string
	var args []any
	if f.MemberID != 0 {
		conds = append(conds, "member_id = ?")
		args = append(args, f.MemberID)
	}
	if f.From != "" {
		conds = append(conds, "report_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "report_date <= ?")
		args = append(args, f.To)
	}

	query := `SELECT ` + reportCols + ` FROM reports`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY report_date DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *ReportStore) Update(id int64, r model.Report) (*model.Report, error) {
	_, err := s.db.Exec(
		`UPDATE reports SET member_id = ?, report_date = ?, reach = ?, responses = ?,
			deals = ?, revenue = ?, product = ?, channel = ?, warehouse = ?,
			order_code = ?, order_date = ?, customer_name = ?, customer_link = ?,
			address = ?, phone = ?, status = ?, note = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		r.MemberID, r.ReportDate, r.Reach, r.Responses, r.Deals, r.Revenue,
		r.Product, r.Channel, r.Warehouse, r.OrderCode, r.OrderDate,
		r.CustomerName, r.CustomerLink, r.Address, r.Phone, r.Status, r.Note,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReportStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}
