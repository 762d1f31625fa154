package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalog/dentalog/internal/shared"
)

// RepositoryPort defines data access methods for user settings.
type RepositoryPort interface {
	Get(ctx context.Context, ownerID int64) (*Settings, error)
	Upsert(ctx context.Context, ownerID int64, s Settings) (*Settings, error)
}

// Repository persists user settings in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// Get fetches the stored settings row for a user.
func (r *Repository) Get(ctx context.Context, ownerID int64) (*Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT show_summary, show_filters, show_table, updated_at
FROM user_settings WHERE owner_id = $1`, ownerID).
		Scan(&s.ShowSummary, &s.ShowFilters, &s.ShowTable, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert writes the settings row, creating it when absent.
func (r *Repository) Upsert(ctx context.Context, ownerID int64, s Settings) (*Settings, error) {
	var out Settings
	err := r.pool.QueryRow(ctx, `INSERT INTO user_settings
(owner_id, show_summary, show_filters, show_table, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW())
ON CONFLICT (owner_id) DO UPDATE SET
show_summary=EXCLUDED.show_summary, show_filters=EXCLUDED.show_filters,
show_table=EXCLUDED.show_table, updated_at=NOW()
RETURNING show_summary, show_filters, show_table, updated_at`,
		ownerID, s.ShowSummary, s.ShowFilters, s.ShowTable).
		Scan(&out.ShowSummary, &out.ShowFilters, &out.ShowTable, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
