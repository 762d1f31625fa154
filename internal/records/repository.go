package records

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for clinic records. All reads
// and writes are scoped to the owning user; cross-user access is not
// expressible through this interface.
type RepositoryPort interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]Record, error)
	Get(ctx context.Context, ownerID int64, id string) (*Record, error)
	Create(ctx context.Context, ownerID int64, rec Record) (*Record, error)
	Update(ctx context.Context, ownerID int64, rec Record) (*Record, error)
	Delete(ctx context.Context, ownerID int64, id string) error
}

// Repository persists clinic records in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)
