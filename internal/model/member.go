package model

import "time"

const (
	RoleLeader  = "leader"
	RoleRegular = "regular"
)

type Member struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Role      string    `json:"role"`
	HasPIN    bool      `json:"has_pin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Member) IsLeader() bool {
	return m.Role == RoleLeader
}
