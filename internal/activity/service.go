// Gente Networking | 2026
// service.go

package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/member"
	"github.com/gente-networking/backend/internal/scoring"
)

// Recalculator is the slice of the scoring engine this package needs:
// after an activity is persisted the owner's score is recomputed.
type Recalculator interface {
	RecalculateAfterActivity(
		ctx context.Context,
		memberID, activityType, referenceID string,
	) (scoring.Result, error)
}

type Service struct {
	repo    Repository
	members *member.Service
	recalc  Recalculator
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	members *member.Service,
	recalc Recalculator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:    repo,
		members: members,
		recalc:  recalc,
		logger:  logger,
	}
}

// RegisterMeeting persists a meeting or gente-em-ação record and recomputes
// the member's score. The registration itself never fails on a recalc error;
// the ledger catches up on the next recalculation.
func (s *Service) RegisterMeeting(
	ctx context.Context,
	memberID string,
	req CreateMeetingRequest,
) (*Meeting, error) {
	meeting := &Meeting{
		ID:         uuid.New().String(),
		MemberID:   memberID,
		Kind:       req.Kind,
		Title:      req.Title,
		Notes:      req.Notes,
		OccurredAt: req.OccurredAt,
	}

	if err := s.repo.CreateMeeting(ctx, meeting); err != nil {
		return nil, err
	}

	activityType := scoring.TypeMeeting
	if meeting.Kind == KindGenteEmAcao {
		activityType = scoring.TypeGenteEmAcao
	}
	s.recalculate(ctx, memberID, activityType, meeting.ID)

	return meeting, nil
}

func (s *Service) RecordAttendance(
	ctx context.Context,
	memberID string,
	req RecordAttendanceRequest,
) (*Attendance, error) {
	attendance := &Attendance{
		ID:         uuid.New().String(),
		MemberID:   memberID,
		EventName:  req.EventName,
		AttendedAt: req.AttendedAt,
	}

	if err := s.repo.CreateAttendance(ctx, attendance); err != nil {
		return nil, err
	}

	s.recalculate(ctx, memberID, scoring.TypeAttendance, attendance.ID)

	return attendance, nil
}

// WriteTestimonial credits the author, not the subject.
func (s *Service) WriteTestimonial(
	ctx context.Context,
	authorID string,
	req WriteTestimonialRequest,
) (*Testimonial, error) {
	if authorID == req.SubjectID {
		return nil, core.BadRequestError(
			"cannot write a testimonial about yourself",
		)
	}

	if _, err := s.members.GetMember(ctx, req.SubjectID); err != nil {
		return nil, fmt.Errorf("testimonial subject: %w", err)
	}

	testimonial := &Testimonial{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		SubjectID: req.SubjectID,
		Content:   req.Content,
	}

	if err := s.repo.CreateTestimonial(ctx, testimonial); err != nil {
		return nil, err
	}

	s.recalculate(ctx, authorID, scoring.TypeTestimonial, testimonial.ID)

	return testimonial, nil
}

// MakeReferral credits the giver.
func (s *Service) MakeReferral(
	ctx context.Context,
	giverID string,
	req MakeReferralRequest,
) (*Referral, error) {
	if giverID == req.ReceiverID {
		return nil, core.BadRequestError("cannot refer business to yourself")
	}

	if _, err := s.members.GetMember(ctx, req.ReceiverID); err != nil {
		return nil, fmt.Errorf("referral receiver: %w", err)
	}

	referral := &Referral{
		ID:          uuid.New().String(),
		GiverID:     giverID,
		ReceiverID:  req.ReceiverID,
		Description: req.Description,
	}

	if err := s.repo.CreateReferral(ctx, referral); err != nil {
		return nil, err
	}

	s.recalculate(ctx, giverID, scoring.TypeReferral, referral.ID)

	return referral, nil
}

func (s *Service) CloseDeal(
	ctx context.Context,
	memberID string,
	req CloseDealRequest,
) (*Deal, error) {
	deal := &Deal{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		Description: req.Description,
		ValueCents:  req.ValueCents,
		ClosedAt:    req.ClosedAt,
	}

	if err := s.repo.CreateDeal(ctx, deal); err != nil {
		return nil, err
	}

	s.recalculate(ctx, memberID, scoring.TypeDeal, deal.ID)

	return deal, nil
}

// Invite creates a pending invitation and returns it together with the
// plaintext bearer token. The token is shown once; only its hash is stored.
func (s *Service) Invite(
	ctx context.Context,
	inviterID string,
	req InviteRequest,
) (*Invitation, string, error) {
	exists, err := s.members.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", core.ConflictError("email already registered")
	}

	token, err := core.GenerateInviteToken()
	if err != nil {
		return nil, "", fmt.Errorf("invite token: %w", err)
	}

	invitation := &Invitation{
		ID:        uuid.New().String(),
		InviterID: inviterID,
		Email:     req.Email,
		TokenHash: core.HashToken(token),
		Status:    InvitationPending,
	}

	if err := s.repo.CreateInvitation(ctx, invitation); err != nil {
		return nil, "", err
	}

	return invitation, token, nil
}

// AcceptInvitation redeems a pending invitation: the guest becomes a member
// at zero points and the inviter's score is recomputed to pick up the
// accepted invitation.
func (s *Service) AcceptInvitation(
	ctx context.Context,
	req AcceptInvitationRequest,
) (*Invitation, *member.Member, error) {
	invitation, err := s.repo.GetInvitationByTokenHash(
		ctx,
		core.HashToken(req.Token),
	)
	if err != nil {
		return nil, nil, core.TokenInvalidError()
	}

	if invitation.Status != InvitationPending {
		return nil, nil, core.ConflictError("invitation already redeemed")
	}

	newMember, err := s.members.Create(ctx, member.CreateMemberRequest{
		Email: invitation.Email,
		Name:  req.Name,
	})
	if err != nil {
		return nil, nil, err
	}

	err = s.repo.MarkInvitationAccepted(ctx, invitation.ID, newMember.ID)
	if err != nil {
		return nil, nil, err
	}

	invitation.Status = InvitationAccepted
	invitation.AcceptedMemberID = &newMember.ID

	s.recalculate(
		ctx,
		invitation.InviterID,
		scoring.TypeInvitation,
		invitation.ID,
	)

	return invitation, newMember, nil
}

func (s *Service) recalculate(
	ctx context.Context,
	memberID, activityType, referenceID string,
) {
	_, err := s.recalc.RecalculateAfterActivity(
		ctx,
		memberID,
		activityType,
		referenceID,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "post-activity recalculation failed",
			"member_id", memberID,
			"activity_type", activityType,
			"reference_id", referenceID,
			"error", err,
		)
	}
}
