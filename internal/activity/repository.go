// Gente Networking | 2026
// repository.go

package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/scoring"
)

type Repository interface {
	CreateMeeting(ctx context.Context, meeting *Meeting) error
	CreateAttendance(ctx context.Context, attendance *Attendance) error
	CreateTestimonial(ctx context.Context, testimonial *Testimonial) error
	CreateReferral(ctx context.Context, referral *Referral) error
	CreateDeal(ctx context.Context, deal *Deal) error
	CreateInvitation(ctx context.Context, invitation *Invitation) error
	GetInvitationByTokenHash(
		ctx context.Context,
		tokenHash string,
	) (*Invitation, error)
	MarkInvitationAccepted(
		ctx context.Context,
		invitationID, memberID string,
	) error
	CountsForMember(
		ctx context.Context,
		memberID string,
	) (scoring.ActivityCounts, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMeeting(
	ctx context.Context,
	meeting *Meeting,
) error {
	query := `
		INSERT INTO meetings (id, member_id, kind, title, notes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &meeting.CreatedAt, query,
		meeting.ID,
		meeting.MemberID,
		meeting.Kind,
		meeting.Title,
		meeting.Notes,
		meeting.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}

	return nil
}

func (r *repository) CreateAttendance(
	ctx context.Context,
	attendance *Attendance,
) error {
	query := `
		INSERT INTO attendances (id, member_id, event_name, attended_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &attendance.CreatedAt, query,
		attendance.ID,
		attendance.MemberID,
		attendance.EventName,
		attendance.AttendedAt,
	)
	if err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}

	return nil
}

func (r *repository) CreateTestimonial(
	ctx context.Context,
	testimonial *Testimonial,
) error {
	query := `
		INSERT INTO testimonials (id, author_id, subject_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &testimonial.CreatedAt, query,
		testimonial.ID,
		testimonial.AuthorID,
		testimonial.SubjectID,
		testimonial.Content,
	)
	if err != nil {
		return fmt.Errorf("create testimonial: %w", err)
	}

	return nil
}

func (r *repository) CreateReferral(
	ctx context.Context,
	referral *Referral,
) error {
	query := `
		INSERT INTO referrals (id, giver_id, receiver_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &referral.CreatedAt, query,
		referral.ID,
		referral.GiverID,
		referral.ReceiverID,
		referral.Description,
	)
	if err != nil {
		return fmt.Errorf("create referral: %w", err)
	}

	return nil
}

func (r *repository) CreateDeal(ctx context.Context, deal *Deal) error {
	query := `
		INSERT INTO deals (id, member_id, description, value_cents, closed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &deal.CreatedAt, query,
		deal.ID,
		deal.MemberID,
		deal.Description,
		deal.ValueCents,
		deal.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}

	return nil
}

func (r *repository) CreateInvitation(
	ctx context.Context,
	invitation *Invitation,
) error {
	query := `
		INSERT INTO invitations (id, inviter_id, email, token_hash, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &invitation.CreatedAt, query,
		invitation.ID,
		invitation.InviterID,
		invitation.Email,
		invitation.TokenHash,
		invitation.Status,
	)
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}

	return nil
}

func (r *repository) GetInvitationByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*Invitation, error) {
	query := `
		SELECT id, inviter_id, email, token_hash, status,
		       accepted_member_id, created_at, accepted_at
		FROM invitations
		WHERE token_hash = $1`

	var invitation Invitation
	err := r.db.GetContext(ctx, &invitation, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invitation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	return &invitation, nil
}

func (r *repository) MarkInvitationAccepted(
	ctx context.Context,
	invitationID, memberID string,
) error {
	query := `
		UPDATE invitations
		SET status = $3, accepted_member_id = $2, accepted_at = NOW()
		WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(ctx, query,
		invitationID,
		memberID,
		InvitationAccepted,
		InvitationPending,
	)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("accept invitation: %w", core.ErrConflict)
	}

	return nil
}

// CountsForMember reads all qualifying activity totals in one round-trip.
// This is the counts feed the score calculator consumes; it always reflects
// current rows, so retracted activities lower the next score automatically.
func (r *repository) CountsForMember(
	ctx context.Context,
	memberID string,
) (scoring.ActivityCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM meetings
			 WHERE member_id = $1 AND kind = 'meeting') AS meetings,
			(SELECT COUNT(*) FROM meetings
			 WHERE member_id = $1 AND kind = 'gente_em_acao') AS gente_em_acao,
			(SELECT COUNT(*) FROM testimonials
			 WHERE author_id = $1) AS testimonials,
			(SELECT COUNT(*) FROM referrals
			 WHERE giver_id = $1) AS referrals,
			(SELECT COUNT(*) FROM attendances
			 WHERE member_id = $1) AS attendances,
			(SELECT COUNT(*) FROM invitations
			 WHERE inviter_id = $1 AND status = 'accepted')
				AS accepted_invitations,
			(SELECT COUNT(*) FROM deals
			 WHERE member_id = $1) AS deals,
			(SELECT COALESCE(SUM(value_cents), 0) FROM deals
			 WHERE member_id = $1) AS deal_value_cents`

	var counts scoring.ActivityCounts
	if err := r.db.GetContext(ctx, &counts, query, memberID); err != nil {
		return scoring.ActivityCounts{}, fmt.Errorf(
			"count activities: %w",
			err,
		)
	}

	return counts, nil
}

var _ scoring.CountsSource = (*repository)(nil)
