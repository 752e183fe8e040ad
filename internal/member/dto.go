// Gente Networking | 2026
// dto.go

package member

import (
	"time"

	"github.com/gente-networking/backend/internal/scoring"
)

type CreateMemberRequest struct {
	Email   string `json:"email"   validate:"required,email,max=255"`
	Name    string `json:"name"    validate:"required,min=1,max=100"`
	Company string `json:"company" validate:"omitempty,max=100"`
	City    string `json:"city"    validate:"omitempty,max=100"`
}

type UpdateMemberRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=1,max=100"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=100"`
	City    *string `json:"city,omitempty"    validate:"omitempty,max=100"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin"`
}

type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	City      string    `json:"city,omitempty"`
	Role      string    `json:"role"`
	Points    int       `json:"points"`
	Rank      string    `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileResponse is the member's own view, with progress toward the next
// rank tier for the dashboard gauge.
type ProfileResponse struct {
	MemberResponse
	NextRank     string  `json:"next_rank,omitempty"`
	PointsToNext int     `json:"points_to_next,omitempty"`
	Progress     float64 `json:"progress"`
}

type ListMembersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Rank     string `json:"rank"`
	Role     string `json:"role"`
}

func (p *ListMembersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListMembersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToMemberResponse(m *Member) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Company:   m.Company,
		City:      m.City,
		Role:      m.Role,
		Points:    m.Points,
		Rank:      m.Rank,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToMemberResponseList(members []Member) []MemberResponse {
	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, ToMemberResponse(&m))
	}
	return responses
}

func ToProfileResponse(m *Member, rules scoring.Rules) ProfileResponse {
	resp := ProfileResponse{
		MemberResponse: ToMemberResponse(m),
		Progress:       rules.Progress(m.Points),
	}

	if next, ok := rules.NextTier(m.Points); ok {
		resp.NextRank = next.Name
		resp.PointsToNext = next.MinPoints - m.Points
	}

	return resp
}
