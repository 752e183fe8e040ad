// Gente Networking | 2026
// repository.go

package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gente-networking/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, member *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	Update(ctx context.Context, member *Member) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListMembersParams) ([]Member, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, member *Member) error {
	// points/rank come from the column defaults: 0 and the lowest tier.
	query := `
		INSERT INTO members (id, email, name, company, city, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING points, "rank", created_at, updated_at`

	err := r.db.GetContext(ctx, member, query,
		member.ID,
		member.Email,
		member.Name,
		member.Company,
		member.City,
		member.Role,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create member: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Member, error) {
	query := `
		SELECT id, email, name, company, city, role, points, "rank",
		       created_at, updated_at, deleted_at
		FROM members
		WHERE id = $1 AND deleted_at IS NULL`

	var member Member
	err := r.db.GetContext(ctx, &member, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &member, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Member, error) {
	query := `
		SELECT id, email, name, company, city, role, points, "rank",
		       created_at, updated_at, deleted_at
		FROM members
		WHERE email = $1 AND deleted_at IS NULL`

	var member Member
	err := r.db.GetContext(ctx, &member, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get member by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member by email: %w", err)
	}

	return &member, nil
}

// Update writes profile fields only. points/rank are never touched here;
// the scoring repository owns that pair.
func (r *repository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE members
		SET name = $2, company = $3, city = $4, role = $5, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &member.UpdatedAt, query,
		member.ID,
		member.Name,
		member.Company,
		member.City,
		member.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update member: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE members
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("deactivate member: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListMembersParams,
) ([]Member, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d OR company ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Rank != "" {
		conditions = append(conditions, fmt.Sprintf(`"rank" = $%d`, argIdx))
		args = append(args, params.Rank)
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM members WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, email, name, company, city, role, points, "rank",
		       created_at, updated_at, deleted_at
		FROM members
		WHERE %s
		ORDER BY points DESC, created_at
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	return members, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
