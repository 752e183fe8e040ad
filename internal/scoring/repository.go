// Gente Networking | 2026
// repository.go

package scoring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gente-networking/backend/internal/core"
)

// Store is everything the recalculator needs from the data layer. The
// postgres implementation is the only writer of members.points/rank in the
// whole codebase.
type Store interface {
	ProfileScore(ctx context.Context, memberID string) (ProfileScore, error)
	MemberIDs(ctx context.Context) ([]string, error)
	ApplyChange(ctx context.Context, change ScoreChange) error
	History(
		ctx context.Context,
		memberID string,
		limit int,
	) ([]HistoryEntry, error)
}

// ScoreChange is one committed recalculation delta: the profile update and
// the ledger entry it implies. ApplyChange persists both atomically.
type ScoreChange struct {
	MemberID     string
	PointsBefore int
	PointsAfter  int
	RankBefore   string
	RankAfter    string
	Reason       string
	ActivityType string
	ReferenceID  *string
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Store {
	return &repository{db: db}
}

func (r *repository) ProfileScore(
	ctx context.Context,
	memberID string,
) (ProfileScore, error) {
	query := `
		SELECT points, "rank"
		FROM members
		WHERE id = $1 AND deleted_at IS NULL`

	var score ProfileScore
	err := r.db.GetContext(ctx, &score, query, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return ProfileScore{}, fmt.Errorf(
			"get profile score: %w",
			core.ErrNotFound,
		)
	}
	if err != nil {
		return ProfileScore{}, fmt.Errorf("get profile score: %w", err)
	}

	return score, nil
}

func (r *repository) MemberIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT id
		FROM members
		WHERE deleted_at IS NULL
		ORDER BY created_at`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}

	return ids, nil
}

// ApplyChange commits the profile update and the ledger append in a single
// transaction: neither write is durable without the other. The compare on
// the stored points value rejects a change computed against a stale read.
func (r *repository) ApplyChange(
	ctx context.Context,
	change ScoreChange,
) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		updateQuery := `
			UPDATE members
			SET points = $3, "rank" = $4, updated_at = NOW()
			WHERE id = $1 AND points = $2 AND deleted_at IS NULL`

		result, err := tx.ExecContext(ctx, updateQuery,
			change.MemberID,
			change.PointsBefore,
			change.PointsAfter,
			change.RankAfter,
		)
		if err != nil {
			return fmt.Errorf("update profile score: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update profile score: %w", err)
		}

		if rows == 0 {
			return r.classifyMiss(ctx, tx, change.MemberID)
		}

		insertQuery := `
			INSERT INTO points_history (
				id, member_id, points_before, points_after, points_change,
				rank_before, rank_after, reason, activity_type, reference_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err = tx.ExecContext(ctx, insertQuery,
			uuid.New().String(),
			change.MemberID,
			change.PointsBefore,
			change.PointsAfter,
			change.PointsAfter-change.PointsBefore,
			change.RankBefore,
			change.RankAfter,
			change.Reason,
			change.ActivityType,
			change.ReferenceID,
		)
		if err != nil {
			return fmt.Errorf("append history entry: %w", err)
		}

		return nil
	})
}

func (r *repository) classifyMiss(
	ctx context.Context,
	tx *sqlx.Tx,
	memberID string,
) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE id = $1 AND deleted_at IS NULL)`
	if err := tx.GetContext(ctx, &exists, query, memberID); err != nil {
		return fmt.Errorf("apply score change: %w", err)
	}

	if !exists {
		return fmt.Errorf("apply score change: %w", core.ErrNotFound)
	}

	// The stored points moved between our read and this write; a concurrent
	// recalculation already committed.
	return fmt.Errorf("apply score change: %w", core.ErrConflict)
}

func (r *repository) History(
	ctx context.Context,
	memberID string,
	limit int,
) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	var err error

	if memberID == "" {
		query := `
			SELECT id, member_id, points_before, points_after, points_change,
			       rank_before, rank_after, reason, activity_type,
			       reference_id, created_at
			FROM points_history
			ORDER BY created_at DESC, id DESC
			LIMIT $1`
		err = r.db.SelectContext(ctx, &entries, query, limit)
	} else {
		query := `
			SELECT id, member_id, points_before, points_after, points_change,
			       rank_before, rank_after, reason, activity_type,
			       reference_id, created_at
			FROM points_history
			WHERE member_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2`
		err = r.db.SelectContext(ctx, &entries, query, memberID, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	return entries, nil
}
