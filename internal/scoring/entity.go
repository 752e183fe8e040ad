// Gente Networking | 2026
// entity.go

package scoring

import (
	"time"
)

// HistoryEntry is one append-only ledger row recording a point change.
// Entries are written exactly once per recalculation that changed state and
// are never mutated or deleted.
type HistoryEntry struct {
	ID           string    `db:"id"`
	MemberID     string    `db:"member_id"`
	PointsBefore int       `db:"points_before"`
	PointsAfter  int       `db:"points_after"`
	PointsChange int       `db:"points_change"`
	RankBefore   *string   `db:"rank_before"`
	RankAfter    *string   `db:"rank_after"`
	Reason       string    `db:"reason"`
	ActivityType string    `db:"activity_type"`
	ReferenceID  *string   `db:"reference_id"`
	CreatedAt    time.Time `db:"created_at"`
}

// ProfileScore is the stored points/rank pair of one member. The pair is
// only ever written together, by the recalculator.
type ProfileScore struct {
	Points int    `db:"points"`
	Rank   string `db:"rank"`
}

// Activity type tags recorded on ledger entries.
const (
	TypeRecalculation = "recalculation"
	TypeMeeting       = "meeting"
	TypeGenteEmAcao   = "gente_em_acao"
	TypeTestimonial   = "testimonial"
	TypeReferral      = "referral"
	TypeAttendance    = "attendance"
	TypeDeal          = "deal"
	TypeInvitation    = "invitation"
)
