package store

import (
	"database/sql"
	"fmt"

	"github.com/bantest04/Manager-KPI2026/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, name, color, role, pin IS NOT NULL, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.Name, &m.Color, &m.Role, &m.HasPIN, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MemberStore) Create(name, color, role string) (*model.Member, error) {
	result, err := s.db.Exec(
		`INSERT INTO members (name, color, role) VALUES (?, ?, ?)`,
		name, color, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *MemberStore) List() ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return m, nil
}

func (s *MemberStore) Update(id int64, name, color string) (*model.Member, error) {
	_, err := s.db.Exec(
		`UPDATE members SET name = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) SetPIN(id int64, hashedPIN string) error {
	_, err := s.db.Exec(
		`UPDATE members SET pin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hashedPIN, id,
	)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (s *MemberStore) GetPINHash(id int64) (string, error) {
	var pin sql.NullString
	err := s.db.QueryRow(`SELECT pin FROM members WHERE id = ?`, id).Scan(&pin)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("member not found")
	}
	if err != nil {
		return "", fmt.Errorf("query pin: %w", err)
	}
	if !pin.Valid {
		return "", nil
	}
	return pin.String, nil
}

func (s *MemberStore) NameExists(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM members WHERE name = ? AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check name exists: %w", err)
	}
	return count > 0, nil
}

// SeedMember describes a default team member created on first boot.
type SeedMember struct {
	Name  string
	Color string
	Role  string
	PIN   string
}

// EnsureSeed inserts the default team when the members table is empty.
// Default PINs are bcrypt-hashed like any other; members change them
// through the verified-old-PIN exchange after first login.
func (s *MemberStore) EnsureSeed(defaults []SeedMember) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&count); err != nil {
		return fmt.Errorf("count members: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.PIN), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed pin: %w", err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO members (name, color, role, pin) VALUES (?, ?, ?, ?)`,
			d.Name, d.Color, d.Role, string(hash),
		); err != nil {
			return fmt.Errorf("seed member %q: %w", d.Name, err)
		}
	}
	return nil
}
