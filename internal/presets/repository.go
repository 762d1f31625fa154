package presets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentalog/dentalog/internal/shared"
)

// RepositoryPort defines data access methods for filter presets.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Preset, error)
	Get(ctx context.Context, ownerID int64, id string) (*Preset, error)
	Create(ctx context.Context, ownerID int64, in Input) (*Preset, error)
	Rename(ctx context.Context, ownerID int64, id, name string) (*Preset, error)
	Delete(ctx context.Context, ownerID int64, id string) error
}

// Repository persists filter presets in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

const presetColumns = `id, name, search, date_from::text, date_to::text, created_at`

// ListByOwner returns the owner's presets, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Preset, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+presetColumns+`
FROM filter_presets
WHERE owner_id = $1
ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Preset{}
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.ID, &p.Name, &p.Search, &p.DateFrom, &p.DateTo, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one preset owned by the user.
func (r *Repository) Get(ctx context.Context, ownerID int64, id string) (*Preset, error) {
	var p Preset
	err := r.pool.QueryRow(ctx, `SELECT `+presetColumns+`
FROM filter_presets
WHERE owner_id = $1 AND id = $2`, ownerID, id).
		Scan(&p.ID, &p.Name, &p.Search, &p.DateFrom, &p.DateTo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a preset snapshot.
func (r *Repository) Create(ctx context.Context, ownerID int64, in Input) (*Preset, error) {
	var p Preset
	err := r.pool.QueryRow(ctx, `INSERT INTO filter_presets
(id, owner_id, name, search, date_from, date_to, created_at)
VALUES ($1,$2,$3,$4,$5::date,$6::date,NOW())
RETURNING `+presetColumns,
		uuid.NewString(), ownerID, in.Name, in.Search, in.DateFrom, in.DateTo).
		Scan(&p.ID, &p.Name, &p.Search, &p.DateFrom, &p.DateTo, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Rename replaces only the preset name.
func (r *Repository) Rename(ctx context.Context, ownerID int64, id, name string) (*Preset, error) {
	var p Preset
	err := r.pool.QueryRow(ctx, `UPDATE filter_presets SET name=$3
WHERE owner_id=$1 AND id=$2
RETURNING `+presetColumns, ownerID, id, name).
		Scan(&p.ID, &p.Name, &p.Search, &p.DateFrom, &p.DateTo, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a preset permanently. Records are untouched.
func (r *Repository) Delete(ctx context.Context, ownerID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM filter_presets WHERE owner_id=$1 AND id=$2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
