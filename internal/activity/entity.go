// Gente Networking | 2026
// entity.go

package activity

import (
	"time"
)

// Meeting is a registered one-to-one meeting or a "gente em ação" action.
type Meeting struct {
	ID         string    `db:"id"`
	MemberID   string    `db:"member_id"`
	Kind       string    `db:"kind"`
	Title      string    `db:"title"`
	Notes      string    `db:"notes"`
	OccurredAt time.Time `db:"occurred_at"`
	CreatedAt  time.Time `db:"created_at"`
}

const (
	KindMeeting     = "meeting"
	KindGenteEmAcao = "gente_em_acao"
)

// Attendance records presence at a community event.
type Attendance struct {
	ID         string    `db:"id"`
	MemberID   string    `db:"member_id"`
	EventName  string    `db:"event_name"`
	AttendedAt time.Time `db:"attended_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// Testimonial is written by one member about another; the author earns
// the points.
type Testimonial struct {
	ID        string    `db:"id"`
	AuthorID  string    `db:"author_id"`
	SubjectID string    `db:"subject_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// Referral passes a business contact between members; the giver earns
// the points.
type Referral struct {
	ID          string    `db:"id"`
	GiverID     string    `db:"giver_id"`
	ReceiverID  string    `db:"receiver_id"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Deal is closed business attributed to a member, valued in centavos.
type Deal struct {
	ID          string    `db:"id"`
	MemberID    string    `db:"member_id"`
	Description string    `db:"description"`
	ValueCents  int64     `db:"value_cents"`
	ClosedAt    time.Time `db:"closed_at"`
	CreatedAt   time.Time `db:"created_at"`
}

// Invitation is a guest invite. Only accepted invitations count toward the
// inviter's score. The bearer token is stored hashed.
type Invitation struct {
	ID               string     `db:"id"`
	InviterID        string     `db:"inviter_id"`
	Email            string     `db:"email"`
	TokenHash        string     `db:"token_hash"`
	Status           string     `db:"status"`
	AcceptedMemberID *string    `db:"accepted_member_id"`
	CreatedAt        time.Time  `db:"created_at"`
	AcceptedAt       *time.Time `db:"accepted_at"`
}

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationExpired  = "expired"
)
