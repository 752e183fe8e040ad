// Gente Networking | 2026
// service_test.go

package member

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gente-networking/backend/internal/core"
	"github.com/gente-networking/backend/internal/scoring"
)

type fakeRepo struct {
	members map[string]*Member
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{members: make(map[string]*Member)}
}

func (f *fakeRepo) Create(_ context.Context, member *Member) error {
	for _, existing := range f.members {
		if existing.Email == member.Email {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
	}

	member.Rank = "iniciante"
	copied := *member
	f.members[member.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Member, error) {
	member, ok := f.members[id]
	if !ok || member.DeletedAt != nil {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	copied := *member
	return &copied, nil
}

func (f *fakeRepo) GetByEmail(
	_ context.Context,
	email string,
) (*Member, error) {
	for _, member := range f.members {
		if member.Email == email && member.DeletedAt == nil {
			copied := *member
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
}

func (f *fakeRepo) Update(_ context.Context, member *Member) error {
	if _, ok := f.members[member.ID]; !ok {
		return fmt.Errorf("update member: %w", core.ErrNotFound)
	}
	copied := *member
	f.members[member.ID] = &copied
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	member, ok := f.members[id]
	if !ok {
		return fmt.Errorf("delete member: %w", core.ErrNotFound)
	}
	now := member.CreatedAt
	member.DeletedAt = &now
	return nil
}

func (f *fakeRepo) List(
	_ context.Context,
	params ListMembersParams,
) ([]Member, int, error) {
	var out []Member
	for _, member := range f.members {
		if member.DeletedAt == nil {
			out = append(out, *member)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ExistsByEmail(
	_ context.Context,
	email string,
) (bool, error) {
	for _, member := range f.members {
		if member.Email == email && member.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, scoring.DefaultRules())
}

func TestCreateNormalizesEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	member, err := svc.Create(context.Background(), CreateMemberRequest{
		Email: "Joao.Silva@Example.COM",
		Name:  "João Silva",
	})
	require.NoError(t, err)

	assert.Equal(t, "joao.silva@example.com", member.Email)
	assert.Equal(t, RoleMember, member.Role)
	assert.Equal(t, 0, member.Points)
	assert.NotEmpty(t, member.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateMemberRequest{
		Email: "ana@example.com",
		Name:  "Ana",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateMemberRequest{
		Email: "ANA@example.com",
		Name:  "Ana Again",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestUpdateMemberRole(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	member, err := svc.Create(ctx, CreateMemberRequest{
		Email: "ana@example.com",
		Name:  "Ana",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateMemberRole(ctx, member.ID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)

	_, err = svc.UpdateMemberRole(ctx, member.ID, "superuser")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestGetMeRequiresIdentity(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.GetMe(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestCanDeactivateMember(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	admin, err := svc.Create(ctx, CreateMemberRequest{
		Email: "admin@example.com",
		Name:  "Admin",
	})
	require.NoError(t, err)
	_, err = svc.UpdateMemberRole(ctx, admin.ID, RoleAdmin)
	require.NoError(t, err)

	regular, err := svc.Create(ctx, CreateMemberRequest{
		Email: "regular@example.com",
		Name:  "Regular",
	})
	require.NoError(t, err)

	other, err := svc.Create(ctx, CreateMemberRequest{
		Email: "other@example.com",
		Name:  "Other",
	})
	require.NoError(t, err)

	// Self-deactivation is always allowed.
	assert.NoError(t, svc.CanDeactivateMember(ctx, regular.ID, regular.ID))

	// Admins can deactivate regular members.
	assert.NoError(t, svc.CanDeactivateMember(ctx, admin.ID, regular.ID))

	// Non-admins cannot deactivate others.
	err = svc.CanDeactivateMember(ctx, regular.ID, other.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// Admin accounts cannot be deactivated by anyone else.
	err = svc.CanDeactivateMember(ctx, regular.ID, admin.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestListMembersParamsNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       ListMembersParams
		page     int
		pageSize int
	}{
		{"defaults", ListMembersParams{}, 1, 20},
		{"negative page", ListMembersParams{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page", ListMembersParams{Page: 2, PageSize: 900}, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.page, tt.in.Page)
			assert.Equal(t, tt.pageSize, tt.in.PageSize)
		})
	}
}

func TestToProfileResponse(t *testing.T) {
	rules := scoring.DefaultRules()

	member := &Member{
		ID:     "m1",
		Email:  "ana@example.com",
		Name:   "Ana",
		Points: 180,
		Rank:   "bronze",
	}

	resp := ToProfileResponse(member, rules)
	assert.Equal(t, "prata", resp.NextRank)
	assert.Equal(t, 20, resp.PointsToNext)
	assert.InDelta(t, float64(180-50)/float64(200-50), resp.Progress, 1e-9)

	top := &Member{ID: "m2", Points: 1500, Rank: "diamante"}
	resp = ToProfileResponse(top, rules)
	assert.Empty(t, resp.NextRank)
	assert.Equal(t, 0, resp.PointsToNext)
	assert.InDelta(t, 1.0, resp.Progress, 1e-9)
}

func TestEmailExistsLowercases(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateMemberRequest{
		Email: "ana@example.com",
		Name:  "Ana",
	})
	require.NoError(t, err)

	exists, err := svc.EmailExists(ctx, strings.ToUpper("ana@example.com"))
	require.NoError(t, err)
	assert.True(t, exists)
}
