// Gente Networking | 2026
// recalc_test.go

package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gente-networking/backend/internal/core"
)

type fakeCounts struct {
	mu     sync.Mutex
	counts map[string]ActivityCounts
	errs   map[string]error
}

func (f *fakeCounts) CountsForMember(
	_ context.Context,
	memberID string,
) (ActivityCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.errs[memberID]; err != nil {
		return ActivityCounts{}, err
	}
	return f.counts[memberID], nil
}

type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]ProfileScore
	history  []ScoreChange
	applyErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]ProfileScore)}
}

func (f *fakeStore) ProfileScore(
	_ context.Context,
	memberID string,
) (ProfileScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	score, ok := f.profiles[memberID]
	if !ok {
		return ProfileScore{}, fmt.Errorf(
			"get profile score: %w",
			core.ErrNotFound,
		)
	}
	return score, nil
}

func (f *fakeStore) MemberIDs(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.profiles))
	for id := range f.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) ApplyChange(_ context.Context, change ScoreChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.applyErr != nil {
		return f.applyErr
	}

	stored := f.profiles[change.MemberID]
	if stored.Points != change.PointsBefore {
		return fmt.Errorf("apply score change: %w", core.ErrConflict)
	}

	f.profiles[change.MemberID] = ProfileScore{
		Points: change.PointsAfter,
		Rank:   change.RankAfter,
	}
	f.history = append(f.history, change)
	return nil
}

func (f *fakeStore) History(
	_ context.Context,
	memberID string,
	limit int,
) ([]HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := make([]HistoryEntry, 0, len(f.history))
	for _, change := range f.history {
		if memberID != "" && change.MemberID != memberID {
			continue
		}
		entries = append(entries, HistoryEntry{
			MemberID:     change.MemberID,
			PointsBefore: change.PointsBefore,
			PointsAfter:  change.PointsAfter,
			PointsChange: change.PointsAfter - change.PointsBefore,
			Reason:       change.Reason,
			ActivityType: change.ActivityType,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

func (f *fakeStore) historyLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}

type failingLocker struct{}

func (failingLocker) Acquire(context.Context, string) (func(), error) {
	return nil, fmt.Errorf("acquire lock: %w", core.ErrConflict)
}

func newTestRecalculator(
	counts *fakeCounts,
	store *fakeStore,
) *Recalculator {
	return NewRecalculator(RecalculatorConfig{
		Counts: counts,
		Store:  store,
		Rules:  DefaultRules(),
	})
}

func TestRecalculateMemberAppliesDelta(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		// 3 meetings + 2 testimonials + 1 referral + 1 accepted
		// invitation: 30 + 30 + 20 + 30 = 110.
		"m1": {
			Meetings:            3,
			Testimonials:        2,
			Referrals:           1,
			AcceptedInvitations: 1,
		},
	}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 80, Rank: "bronze"}

	recalc := newTestRecalculator(counts, store)

	result, err := recalc.RecalculateMember(ctx, "m1")
	require.NoError(t, err)

	assert.True(t, result.Changed)
	assert.Equal(t, 80, result.PointsBefore)
	assert.Equal(t, 110, result.PointsAfter)
	assert.Equal(t, "bronze", result.RankBefore)
	assert.Equal(t, "bronze", result.RankAfter)

	require.Equal(t, 1, store.historyLen())
	entry := store.history[0]
	assert.Equal(t, 30, entry.PointsAfter-entry.PointsBefore)
	assert.Equal(t, TypeRecalculation, entry.ActivityType)

	assert.Equal(t, ProfileScore{Points: 110, Rank: "bronze"},
		store.profiles["m1"])
}

func TestRecalculateMemberIdempotent(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		"m1": {Attendances: 2},
	}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 0, Rank: "iniciante"}

	recalc := newTestRecalculator(counts, store)

	first, err := recalc.RecalculateMember(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, "bronze", first.RankAfter)

	second, err := recalc.RecalculateMember(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, 50, second.PointsBefore)
	assert.Equal(t, 50, second.PointsAfter)

	// The no-op run must not append a ledger row.
	assert.Equal(t, 1, store.historyLen())
}

func TestRecalculateMemberPromotion(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		"m1": {AcceptedInvitations: 7}, // 210 points
	}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 180, Rank: "bronze"}

	recalc := newTestRecalculator(counts, store)

	result, err := recalc.RecalculateMember(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "prata", result.RankAfter)
	assert.Equal(t, "prata", store.profiles["m1"].Rank)
}

// After any recalculation that changed state, the stored profile must agree
// with the trailing ledger entry.
func TestRecalculateMemberLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		"m1": {Meetings: 4, Deals: 1, DealValueCents: 123_456},
	}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 10, Rank: "iniciante"}

	recalc := newTestRecalculator(counts, store)

	result, err := recalc.RecalculateMember(ctx, "m1")
	require.NoError(t, err)
	require.True(t, result.Changed)

	last := store.history[len(store.history)-1]
	assert.Equal(t, store.profiles["m1"].Points, last.PointsAfter)
	assert.Equal(t, store.profiles["m1"].Rank, last.RankAfter)
}

func TestRecalculateMemberNotFound(t *testing.T) {
	counts := &fakeCounts{counts: map[string]ActivityCounts{"ghost": {}}}
	store := newFakeStore()

	recalc := newTestRecalculator(counts, store)

	_, err := recalc.RecalculateMember(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecalculateMemberLockConflict(t *testing.T) {
	counts := &fakeCounts{counts: map[string]ActivityCounts{"m1": {}}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 0, Rank: "iniciante"}

	recalc := NewRecalculator(RecalculatorConfig{
		Counts: counts,
		Store:  store,
		Locker: failingLocker{},
		Rules:  DefaultRules(),
	})

	_, err := recalc.RecalculateMember(context.Background(), "m1")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, 0, store.historyLen())
}

func TestRecalculateAfterActivityReason(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		"m1": {Testimonials: 1},
	}}
	store := newFakeStore()
	store.profiles["m1"] = ProfileScore{Points: 0, Rank: "iniciante"}

	recalc := newTestRecalculator(counts, store)

	result, err := recalc.RecalculateAfterActivity(
		ctx,
		"m1",
		TypeTestimonial,
		"ref-123",
	)
	require.NoError(t, err)
	assert.True(t, result.Changed)

	require.Equal(t, 1, store.historyLen())
	entry := store.history[0]
	assert.Equal(t, "Activity: testimonial", entry.Reason)
	assert.Equal(t, TypeTestimonial, entry.ActivityType)
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, "ref-123", *entry.ReferenceID)
}

func TestRecalculateAllPartialFailure(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{
		counts: map[string]ActivityCounts{
			"a": {Meetings: 1},
			"b": {Meetings: 1},
			"c": {Referrals: 1},
		},
		errs: map[string]error{
			"b": errors.New("activity query timeout"),
		},
	}
	store := newFakeStore()
	store.profiles["a"] = ProfileScore{Points: 0, Rank: "iniciante"}
	store.profiles["b"] = ProfileScore{Points: 0, Rank: "iniciante"}
	store.profiles["c"] = ProfileScore{Points: 0, Rank: "iniciante"}

	recalc := NewRecalculator(RecalculatorConfig{
		Counts:          counts,
		Store:           store,
		Rules:           DefaultRules(),
		BulkConcurrency: 2,
	})

	result, err := recalc.RecalculateAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 1, result.Skipped)

	// The failed member keeps its stored score untouched.
	assert.Equal(t, 0, store.profiles["b"].Points)
	assert.Equal(t, 10, store.profiles["a"].Points)
	assert.Equal(t, 20, store.profiles["c"].Points)
}

func TestRecalculateAllSecondRunNoOp(t *testing.T) {
	ctx := context.Background()

	counts := &fakeCounts{counts: map[string]ActivityCounts{
		"a": {Meetings: 2},
		"b": {Attendances: 1},
	}}
	store := newFakeStore()
	store.profiles["a"] = ProfileScore{Points: 0, Rank: "iniciante"}
	store.profiles["b"] = ProfileScore{Points: 0, Rank: "iniciante"}

	recalc := NewRecalculator(RecalculatorConfig{
		Counts:          counts,
		Store:           store,
		Rules:           DefaultRules(),
		BulkConcurrency: 4,
	})

	first, err := recalc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Updated)

	second, err := recalc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Processed)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Skipped)

	assert.Equal(t, 2, store.historyLen())
}

func TestRecalculateAllCancelled(t *testing.T) {
	counts := &fakeCounts{counts: map[string]ActivityCounts{}}
	store := newFakeStore()
	for i := range 100 {
		store.profiles[fmt.Sprintf("m%d", i)] = ProfileScore{
			Points: 0,
			Rank:   "iniciante",
		}
	}

	recalc := NewRecalculator(RecalculatorConfig{
		Counts:          counts,
		Store:           store,
		Rules:           DefaultRules(),
		BulkConcurrency: 2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := recalc.RecalculateAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
