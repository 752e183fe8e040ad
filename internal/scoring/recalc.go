// Gente Networking | 2026
// recalc.go

package scoring

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gente-networking/backend/internal/core"
)

// CountsSource reads a member's current activity totals. Implemented by the
// activity repository.
type CountsSource interface {
	CountsForMember(
		ctx context.Context,
		memberID string,
	) (ActivityCounts, error)
}

// Recalculator re-derives a member's point total and rank from current
// activity counts and reconciles stored state, keeping the ledger in step.
type Recalculator struct {
	counts          CountsSource
	store           Store
	locker          Locker
	rules           Rules
	logger          *slog.Logger
	bulkConcurrency int
}

type RecalculatorConfig struct {
	Counts          CountsSource
	Store           Store
	Locker          Locker
	Rules           Rules
	Logger          *slog.Logger
	BulkConcurrency int
}

func NewRecalculator(cfg RecalculatorConfig) *Recalculator {
	if cfg.Locker == nil {
		cfg.Locker = NopLocker{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BulkConcurrency < 1 {
		cfg.BulkConcurrency = 1
	}

	return &Recalculator{
		counts:          cfg.Counts,
		store:           cfg.Store,
		locker:          cfg.Locker,
		rules:           cfg.Rules,
		logger:          cfg.Logger,
		bulkConcurrency: cfg.BulkConcurrency,
	}
}

func (r *Recalculator) Rules() Rules {
	return r.rules
}

// Result reports one member's recalculation outcome. Changed is false when
// the stored total already matched, in which case nothing was written.
type Result struct {
	MemberID     string `json:"member_id"`
	Changed      bool   `json:"changed"`
	PointsBefore int    `json:"points_before"`
	PointsAfter  int    `json:"points_after"`
	RankBefore   string `json:"rank_before"`
	RankAfter    string `json:"rank_after"`
}

// Trigger records why a recalculation ran, for the ledger entry.
type Trigger struct {
	Reason       string
	ActivityType string
	ReferenceID  *string
}

func recalculationTrigger() Trigger {
	return Trigger{
		Reason:       "Recalculation",
		ActivityType: TypeRecalculation,
	}
}

// RecalculateMember runs the full cycle for one member: fetch counts,
// compute, compare with stored state and commit the delta if any.
func (r *Recalculator) RecalculateMember(
	ctx context.Context,
	memberID string,
) (Result, error) {
	return r.recalculate(ctx, memberID, recalculationTrigger())
}

// RecalculateAfterActivity is the per-activity variant: the ledger entry
// names the activity that earned the points and points at its record.
func (r *Recalculator) RecalculateAfterActivity(
	ctx context.Context,
	memberID, activityType, referenceID string,
) (Result, error) {
	trigger := Trigger{
		Reason:       "Activity: " + activityType,
		ActivityType: activityType,
	}
	if referenceID != "" {
		trigger.ReferenceID = &referenceID
	}

	return r.recalculate(ctx, memberID, trigger)
}

func (r *Recalculator) recalculate(
	ctx context.Context,
	memberID string,
	trigger Trigger,
) (Result, error) {
	release, err := r.locker.Acquire(ctx, memberID)
	if err != nil {
		return Result{}, err
	}
	defer release()

	counts, err := r.counts.CountsForMember(ctx, memberID)
	if err != nil {
		return Result{}, err
	}

	pointsAfter := r.rules.Score(counts)
	rankAfter := r.rules.ResolveRank(pointsAfter)

	stored, err := r.store.ProfileScore(ctx, memberID)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		MemberID:     memberID,
		PointsBefore: stored.Points,
		PointsAfter:  pointsAfter,
		RankBefore:   stored.Rank,
		RankAfter:    rankAfter,
	}

	if pointsAfter == stored.Points {
		// Unchanged: no profile write, no ledger row.
		return result, nil
	}

	change := ScoreChange{
		MemberID:     memberID,
		PointsBefore: stored.Points,
		PointsAfter:  pointsAfter,
		RankBefore:   stored.Rank,
		RankAfter:    rankAfter,
		Reason:       trigger.Reason,
		ActivityType: trigger.ActivityType,
		ReferenceID:  trigger.ReferenceID,
	}

	if err := r.store.ApplyChange(ctx, change); err != nil {
		return Result{}, err
	}

	result.Changed = true

	core.AddSpanEvent(ctx, "score.recalculated",
		attribute.String("member_id", memberID),
		attribute.Int("points_before", stored.Points),
		attribute.Int("points_after", pointsAfter),
		attribute.String("rank_after", rankAfter),
	)

	r.logger.Info("member score recalculated",
		"member_id", memberID,
		"points_before", stored.Points,
		"points_after", pointsAfter,
		"rank_before", stored.Rank,
		"rank_after", rankAfter,
		"activity_type", trigger.ActivityType,
	)

	return result, nil
}

// BulkResult aggregates a full recalculation run. The admin contract is
// counts only, never a per-member report.
type BulkResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

const memberRecalcTimeout = 15 * time.Second

// RecalculateAll runs the single-member cycle for every active member with
// bounded concurrency. A failure on one member is logged and counted as
// skipped; it never aborts the batch. Running twice in a row updates zero
// members the second time unless activity changed in between.
func (r *Recalculator) RecalculateAll(ctx context.Context) (BulkResult, error) {
	ids, err := r.store.MemberIDs(ctx)
	if err != nil {
		return BulkResult{}, err
	}

	var updated, skipped atomic.Int64

	idCh := make(chan string)
	var wg sync.WaitGroup

	for range r.bulkConcurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for memberID := range idCh {
				memberCtx, cancel := context.WithTimeout(
					ctx,
					memberRecalcTimeout,
				)
				result, err := r.RecalculateMember(memberCtx, memberID)
				cancel()

				if err != nil {
					skipped.Add(1)
					r.logger.Warn("bulk recalculation: member skipped",
						"member_id", memberID,
						"error", err,
					)
					continue
				}

				if result.Changed {
					updated.Add(1)
				}
			}
		}()
	}

	for _, id := range ids {
		select {
		case idCh <- id:
		case <-ctx.Done():
			close(idCh)
			wg.Wait()
			return BulkResult{}, ctx.Err()
		}
	}
	close(idCh)
	wg.Wait()

	result := BulkResult{
		Processed: len(ids),
		Updated:   int(updated.Load()),
		Skipped:   int(skipped.Load()),
	}

	r.logger.Info("bulk recalculation finished",
		"processed", result.Processed,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)

	return result, nil
}
