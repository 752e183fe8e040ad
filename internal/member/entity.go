// Gente Networking | 2026
// entity.go

package member

import (
	"time"
)

// Member is one community profile. Points and Rank are derived state owned
// by the scoring recalculator; nothing in this package writes them.
type Member struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Name      string     `db:"name"`
	Company   string     `db:"company"`
	City      string     `db:"city"`
	Role      string     `db:"role"`
	Points    int        `db:"points"`
	Rank      string     `db:"rank"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m *Member) IsActive() bool {
	return m.DeletedAt == nil
}

func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)
