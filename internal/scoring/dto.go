// Gente Networking | 2026
// dto.go

package scoring

import (
	"time"
)

type HistoryEntryResponse struct {
	ID           string    `json:"id"`
	MemberID     string    `json:"member_id"`
	PointsBefore int       `json:"points_before"`
	PointsAfter  int       `json:"points_after"`
	PointsChange int       `json:"points_change"`
	RankBefore   *string   `json:"rank_before,omitempty"`
	RankAfter    *string   `json:"rank_after,omitempty"`
	Reason       string    `json:"reason"`
	ActivityType string    `json:"activity_type"`
	ReferenceID  *string   `json:"reference_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
}

type RulesResponse struct {
	Version            string         `json:"version"`
	Weights            map[string]int `json:"weights"`
	DealValueUnitCents int64          `json:"deal_value_unit_cents"`
	Tiers              []Tier         `json:"tiers"`
}

func ToHistoryEntryResponse(e *HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:           e.ID,
		MemberID:     e.MemberID,
		PointsBefore: e.PointsBefore,
		PointsAfter:  e.PointsAfter,
		PointsChange: e.PointsChange,
		RankBefore:   e.RankBefore,
		RankAfter:    e.RankAfter,
		Reason:       e.Reason,
		ActivityType: e.ActivityType,
		ReferenceID:  e.ReferenceID,
		CreatedAt:    e.CreatedAt,
	}
}

func ToHistoryResponse(entries []HistoryEntry) HistoryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToHistoryEntryResponse(&e))
	}
	return HistoryResponse{Entries: out}
}

func ToRulesResponse(r Rules) RulesResponse {
	return RulesResponse{
		Version: r.Version,
		Weights: map[string]int{
			CategoryMeeting:     r.Weights.Meeting,
			CategoryGenteEmAcao: r.Weights.GenteEmAcao,
			CategoryTestimonial: r.Weights.Testimonial,
			CategoryReferral:    r.Weights.Referral,
			CategoryAttendance:  r.Weights.Attendance,
			CategoryInvitation:  r.Weights.Invitation,
		},
		DealValueUnitCents: r.DealValueUnitCents,
		Tiers:              r.Tiers,
	}
}
