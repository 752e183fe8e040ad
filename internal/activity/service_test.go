// Gente Networking | 2026
// service_test.go

package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/member"
	"github.com/gente-networking/backend/internal/scoring"
)

type recalcCall struct {
	memberID     string
	activityType string
	referenceID  string
}

type fakeRecalc struct {
	calls []recalcCall
	err   error
}

func (f *fakeRecalc) RecalculateAfterActivity(
	_ context.Context,
	memberID, activityType, referenceID string,
) (scoring.Result, error) {
	f.calls = append(f.calls, recalcCall{
		memberID:     memberID,
		activityType: activityType,
		referenceID:  referenceID,
	})
	if f.err != nil {
		return scoring.Result{}, f.err
	}
	return scoring.Result{MemberID: memberID, Changed: true}, nil
}

type fakeActivityRepo struct {
	meetings     []*Meeting
	attendances  []*Attendance
	testimonials []*Testimonial
	referrals    []*Referral
	deals        []*Deal
	invitations  map[string]*Invitation
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{invitations: make(map[string]*Invitation)}
}

func (f *fakeActivityRepo) CreateMeeting(
	_ context.Context,
	meeting *Meeting,
) error {
	meeting.CreatedAt = time.Now()
	f.meetings = append(f.meetings, meeting)
	return nil
}

func (f *fakeActivityRepo) CreateAttendance(
	_ context.Context,
	attendance *Attendance,
) error {
	attendance.CreatedAt = time.Now()
	f.attendances = append(f.attendances, attendance)
	return nil
}

func (f *fakeActivityRepo) CreateTestimonial(
	_ context.Context,
	testimonial *Testimonial,
) error {
	testimonial.CreatedAt = time.Now()
	f.testimonials = append(f.testimonials, testimonial)
	return nil
}

func (f *fakeActivityRepo) CreateReferral(
	_ context.Context,
	referral *Referral,
) error {
	referral.CreatedAt = time.Now()
	f.referrals = append(f.referrals, referral)
	return nil
}

func (f *fakeActivityRepo) CreateDeal(_ context.Context, deal *Deal) error {
	deal.CreatedAt = time.Now()
	f.deals = append(f.deals, deal)
	return nil
}

func (f *fakeActivityRepo) CreateInvitation(
	_ context.Context,
	invitation *Invitation,
) error {
	invitation.CreatedAt = time.Now()
	f.invitations[invitation.TokenHash] = invitation
	return nil
}

func (f *fakeActivityRepo) GetInvitationByTokenHash(
	_ context.Context,
	tokenHash string,
) (*Invitation, error) {
	invitation, ok := f.invitations[tokenHash]
	if !ok {
		return nil, fmt.Errorf("get invitation: %w", core.ErrNotFound)
	}
	copied := *invitation
	return &copied, nil
}

func (f *fakeActivityRepo) MarkInvitationAccepted(
	_ context.Context,
	invitationID, memberID string,
) error {
	for _, invitation := range f.invitations {
		if invitation.ID != invitationID {
			continue
		}
		if invitation.Status != InvitationPending {
			return fmt.Errorf("accept invitation: %w", core.ErrConflict)
		}
		invitation.Status = InvitationAccepted
		invitation.AcceptedMemberID = &memberID
		return nil
	}
	return fmt.Errorf("accept invitation: %w", core.ErrNotFound)
}

func (f *fakeActivityRepo) CountsForMember(
	_ context.Context,
	_ string,
) (scoring.ActivityCounts, error) {
	return scoring.ActivityCounts{}, nil
}

type fakeMemberRepo struct {
	members map[string]*member.Member
}

func (f *fakeMemberRepo) Create(_ context.Context, m *member.Member) error {
	for _, existing := range f.members {
		if existing.Email == m.Email {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
	}
	f.members[m.ID] = m
	return nil
}

func (f *fakeMemberRepo) GetByID(
	_ context.Context,
	id string,
) (*member.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	return m, nil
}

func (f *fakeMemberRepo) GetByEmail(
	_ context.Context,
	email string,
) (*member.Member, error) {
	for _, m := range f.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
}

func (f *fakeMemberRepo) Update(_ context.Context, m *member.Member) error {
	f.members[m.ID] = m
	return nil
}

func (f *fakeMemberRepo) SoftDelete(_ context.Context, _ string) error {
	return nil
}

func (f *fakeMemberRepo) List(
	_ context.Context,
	_ member.ListMembersParams,
) ([]member.Member, int, error) {
	return nil, 0, nil
}

func (f *fakeMemberRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, m := range f.members {
		if m.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func newTestActivityService(
	repo *fakeActivityRepo,
	recalc *fakeRecalc,
) (*Service, *fakeMemberRepo) {
	memberRepo := &fakeMemberRepo{members: make(map[string]*member.Member)}
	memberSvc := member.NewService(memberRepo, scoring.DefaultRules())
	return NewService(repo, memberSvc, recalc, nil), memberRepo
}

func TestRegisterMeetingTriggersRecalc(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	meeting, err := svc.RegisterMeeting(context.Background(), "m1",
		CreateMeetingRequest{
			Kind:       KindMeeting,
			Title:      "Coffee with Pedro",
			OccurredAt: time.Now(),
		})
	require.NoError(t, err)

	require.Len(t, repo.meetings, 1)
	require.Len(t, recalc.calls, 1)
	assert.Equal(t, "m1", recalc.calls[0].memberID)
	assert.Equal(t, scoring.TypeMeeting, recalc.calls[0].activityType)
	assert.Equal(t, meeting.ID, recalc.calls[0].referenceID)
}

func TestRegisterGenteEmAcaoUsesOwnType(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	_, err := svc.RegisterMeeting(context.Background(), "m1",
		CreateMeetingRequest{
			Kind:       KindGenteEmAcao,
			Title:      "Mutirão",
			OccurredAt: time.Now(),
		})
	require.NoError(t, err)

	require.Len(t, recalc.calls, 1)
	assert.Equal(t, scoring.TypeGenteEmAcao, recalc.calls[0].activityType)
}

func TestRecalcFailureDoesNotFailRegistration(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{err: errors.New("redis down")}
	svc, _ := newTestActivityService(repo, recalc)

	_, err := svc.RecordAttendance(context.Background(), "m1",
		RecordAttendanceRequest{
			EventName:  "Encontro mensal",
			AttendedAt: time.Now(),
		})

	require.NoError(t, err)
	assert.Len(t, repo.attendances, 1)
}

func TestWriteTestimonialRejectsSelf(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	_, err := svc.WriteTestimonial(context.Background(), "m1",
		WriteTestimonialRequest{
			SubjectID: "m1",
			Content:   "great partner",
		})

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, repo.testimonials)
	assert.Empty(t, recalc.calls)
}

func TestWriteTestimonialCreditsAuthor(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, memberRepo := newTestActivityService(repo, recalc)

	memberRepo.members["subject"] = &member.Member{
		ID:    "subject",
		Email: "subject@example.com",
	}

	testimonial, err := svc.WriteTestimonial(context.Background(), "author",
		WriteTestimonialRequest{
			SubjectID: "subject",
			Content:   "great partner",
		})
	require.NoError(t, err)

	require.Len(t, recalc.calls, 1)
	assert.Equal(t, "author", recalc.calls[0].memberID)
	assert.Equal(t, scoring.TypeTestimonial, recalc.calls[0].activityType)
	assert.Equal(t, testimonial.ID, recalc.calls[0].referenceID)
}

func TestMakeReferralUnknownReceiver(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	_, err := svc.MakeReferral(context.Background(), "giver",
		MakeReferralRequest{
			ReceiverID:  "ghost",
			Description: "intro to supplier",
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, repo.referrals)
}

func TestCloseDealTriggersRecalc(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	deal, err := svc.CloseDeal(context.Background(), "m1", CloseDealRequest{
		Description: "annual contract",
		ValueCents:  25000,
		ClosedAt:    time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25000), deal.ValueCents)
	require.Len(t, recalc.calls, 1)
	assert.Equal(t, scoring.TypeDeal, recalc.calls[0].activityType)
}

func TestInviteStoresOnlyTokenHash(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	invitation, token, err := svc.Invite(context.Background(), "inviter",
		InviteRequest{Email: "guest@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, invitation.TokenHash)
	assert.Equal(t, core.HashToken(token), invitation.TokenHash)
	assert.Equal(t, InvitationPending, invitation.Status)

	// Creating the invitation earns nothing; only acceptance scores.
	assert.Empty(t, recalc.calls)
}

func TestInviteExistingMemberEmail(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, memberRepo := newTestActivityService(repo, recalc)

	memberRepo.members["m1"] = &member.Member{
		ID:    "m1",
		Email: "guest@example.com",
	}

	_, _, err := svc.Invite(context.Background(), "inviter",
		InviteRequest{Email: "guest@example.com"})

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Status)
}

func TestAcceptInvitation(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, memberRepo := newTestActivityService(repo, recalc)
	ctx := context.Background()

	_, token, err := svc.Invite(ctx, "inviter",
		InviteRequest{Email: "Guest@Example.com"})
	require.NoError(t, err)

	invitation, newMember, err := svc.AcceptInvitation(ctx,
		AcceptInvitationRequest{Token: token, Name: "Guest"})
	require.NoError(t, err)

	assert.Equal(t, InvitationAccepted, invitation.Status)
	require.NotNil(t, invitation.AcceptedMemberID)
	assert.Equal(t, newMember.ID, *invitation.AcceptedMemberID)
	assert.Equal(t, "guest@example.com", newMember.Email)

	_, ok := memberRepo.members[newMember.ID]
	assert.True(t, ok)

	// The inviter, not the guest, gets the recalculation.
	require.Len(t, recalc.calls, 1)
	assert.Equal(t, "inviter", recalc.calls[0].memberID)
	assert.Equal(t, scoring.TypeInvitation, recalc.calls[0].activityType)
	assert.Equal(t, invitation.ID, recalc.calls[0].referenceID)
}

func TestAcceptInvitationInvalidToken(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)

	_, _, err := svc.AcceptInvitation(context.Background(),
		AcceptInvitationRequest{Token: "not-a-real-token", Name: "Guest"})

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestAcceptInvitationTwice(t *testing.T) {
	repo := newFakeActivityRepo()
	recalc := &fakeRecalc{}
	svc, _ := newTestActivityService(repo, recalc)
	ctx := context.Background()

	_, token, err := svc.Invite(ctx, "inviter",
		InviteRequest{Email: "guest@example.com"})
	require.NoError(t, err)

	_, _, err = svc.AcceptInvitation(ctx,
		AcceptInvitationRequest{Token: token, Name: "Guest"})
	require.NoError(t, err)

	_, _, err = svc.AcceptInvitation(ctx,
		AcceptInvitationRequest{Token: token, Name: "Guest"})
	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Status)
}
