// Gente Networking | 2026
// dto.go

package activity

import (
	"time"
)

type CreateMeetingRequest struct {
	Kind       string    `json:"kind"        validate:"required,oneof=meeting gente_em_acao"`
	Title      string    `json:"title"       validate:"required,min=1,max=200"`
	Notes      string    `json:"notes"       validate:"omitempty,max=2000"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
}

type RecordAttendanceRequest struct {
	EventName  string    `json:"event_name"  validate:"required,min=1,max=200"`
	AttendedAt time.Time `json:"attended_at" validate:"required"`
}

type WriteTestimonialRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	Content   string `json:"content"    validate:"required,min=1,max=2000"`
}

type MakeReferralRequest struct {
	ReceiverID  string `json:"receiver_id" validate:"required,uuid4"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

type CloseDealRequest struct {
	Description string    `json:"description" validate:"required,min=1,max=2000"`
	ValueCents  int64     `json:"value_cents" validate:"required,gt=0"`
	ClosedAt    time.Time `json:"closed_at"   validate:"required"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required,min=16,max=128"`
	Name  string `json:"name"  validate:"required,min=1,max=100"`
}

type MeetingResponse struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type AttendanceResponse struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	EventName  string    `json:"event_name"`
	AttendedAt time.Time `json:"attended_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type TestimonialResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	SubjectID string    `json:"subject_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ReferralResponse struct {
	ID          string    `json:"id"`
	GiverID     string    `json:"giver_id"`
	ReceiverID  string    `json:"receiver_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type DealResponse struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	Description string    `json:"description"`
	ValueCents  int64     `json:"value_cents"`
	ClosedAt    time.Time `json:"closed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// InvitationResponse carries the plaintext token exactly once, in the
// response to the create call. Only the hash is stored.
type InvitationResponse struct {
	ID        string    `json:"id"`
	InviterID string    `json:"inviter_id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AcceptInvitationResponse struct {
	InvitationID string `json:"invitation_id"`
	MemberID     string `json:"member_id"`
	Email        string `json:"email"`
}

func ToMeetingResponse(m *Meeting) MeetingResponse {
	return MeetingResponse{
		ID:         m.ID,
		MemberID:   m.MemberID,
		Kind:       m.Kind,
		Title:      m.Title,
		Notes:      m.Notes,
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}

func ToAttendanceResponse(a *Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:         a.ID,
		MemberID:   a.MemberID,
		EventName:  a.EventName,
		AttendedAt: a.AttendedAt,
		CreatedAt:  a.CreatedAt,
	}
}

func ToTestimonialResponse(t *Testimonial) TestimonialResponse {
	return TestimonialResponse{
		ID:        t.ID,
		AuthorID:  t.AuthorID,
		SubjectID: t.SubjectID,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func ToReferralResponse(ref *Referral) ReferralResponse {
	return ReferralResponse{
		ID:          ref.ID,
		GiverID:     ref.GiverID,
		ReceiverID:  ref.ReceiverID,
		Description: ref.Description,
		CreatedAt:   ref.CreatedAt,
	}
}

func ToDealResponse(d *Deal) DealResponse {
	return DealResponse{
		ID:          d.ID,
		MemberID:    d.MemberID,
		Description: d.Description,
		ValueCents:  d.ValueCents,
		ClosedAt:    d.ClosedAt,
		CreatedAt:   d.CreatedAt,
	}
}

func ToInvitationResponse(inv *Invitation, token string) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		InviterID: inv.InviterID,
		Email:     inv.Email,
		Status:    inv.Status,
		Token:     token,
		CreatedAt: inv.CreatedAt,
	}
}
