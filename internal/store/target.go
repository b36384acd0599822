package store

import (
	"database/sql"
	"fmt"

	"github.com/bantest04/Manager-KPI2026/internal/model"
	"github.com/google/uuid"
)

type TargetStore struct {
	db *sql.DB
}

func NewTargetStore(db *sql.DB) *TargetStore {
	return &TargetStore{db: db}
}

// GetTeamTarget returns the team target for a month, or nil when the
// month has not been configured yet (callers treat that as target 0).
func (s *TargetStore) GetTeamTarget(month string) (*model.TeamTarget, error) {
	var t model.TeamTarget
	err := s.db.QueryRow(
		`SELECT id, month, target, created_at, updated_at FROM team_targets WHERE month = ?`,
		month,
	).Scan(&t.ID, &t.Month, &t.Target, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query team target: %w", err)
	}
	return &t, nil
}

func (s *TargetStore) SetTeamTarget(month string, target int64) (*model.TeamTarget, error) {
	_, err := s.db.Exec(
		`INSERT INTO team_targets (month, target) VALUES (?, ?)
		 ON CONFLICT(month) DO UPDATE SET target = excluded.target, updated_at = CURRENT_TIMESTAMP`,
		month, target,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert team target: %w", err)
	}
	return s.GetTeamTarget(month)
}

// GetShares returns a month's allocation as memberID -> percent. An
// empty map means no allocation has been saved for the month.
func (s *TargetStore) GetShares(month string) (map[int64]float64, error) {
	rows, err := s.db.Query(
		`SELECT member_id, percent FROM allocation_shares WHERE month = ?`,
		month,
	)
	if err != nil {
		return nil, fmt.Errorf("query allocation shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[int64]float64)
	for rows.Next() {
		var memberID int64
		var percent float64
		if err := rows.Scan(&memberID, &percent); err != nil {
			return nil, fmt.Errorf("scan allocation share: %w", err)
		}
		shares[memberID] = percent
	}
	return shares, rows.Err()
}

// ReplaceShares swaps a month's allocation atomically.
func (s *TargetStore) ReplaceShares(month string, shares map[int64]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM allocation_shares WHERE month = ?`, month); err != nil {
		return fmt.Errorf("clear allocation shares: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO allocation_shares (member_id, month, percent) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for memberID, percent := range shares {
		if _, err := stmt.Exec(memberID, month, percent); err != nil {
			return fmt.Errorf("insert share for member %d: %w", memberID, err)
		}
	}

	return tx.Commit()
}

func (s *TargetStore) ListCampaigns() ([]model.CampaignTarget, error) {
	rows, err := s.db.Query(
		`SELECT id, month, start_date, end_date, working_days, target
		 FROM campaign_targets ORDER BY month`,
	)
	if err != nil {
		return nil, fmt.Errorf("query campaign targets: %w", err)
	}
	defer rows.Close()

	var campaigns []model.CampaignTarget
	for rows.Next() {
		var c model.CampaignTarget
		if err := rows.Scan(&c.ID, &c.Month, &c.StartDate, &c.EndDate, &c.WorkingDays, &c.Target); err != nil {
			return nil, fmt.Errorf("scan campaign target: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (s *TargetStore) GetCampaign(month string) (*model.CampaignTarget, error) {
	var c model.CampaignTarget
	err := s.db.QueryRow(
		`SELECT id, month, start_date, end_date, working_days, target
		 FROM campaign_targets WHERE month = ?`,
		month,
	).Scan(&c.ID, &c.Month, &c.StartDate, &c.EndDate, &c.WorkingDays, &c.Target)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query campaign target: %w", err)
	}
	return &c, nil
}

// UpsertCampaign creates or rewrites a month's campaign window. New
// campaigns get a fresh UUID; existing ones keep theirs.
func (s *TargetStore) UpsertCampaign(month, startDate, endDate string, workingDays int, target int64) (*model.CampaignTarget, error) {
	_, err := s.db.Exec(
		`INSERT INTO campaign_targets (id, month, start_date, end_date, working_days, target)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(month) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			working_days = excluded.working_days,
			target = excluded.target`,
		uuid.NewString(), month, startDate, endDate, workingDays, target,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert campaign target: %w", err)
	}
	return s.GetCampaign(month)
}
