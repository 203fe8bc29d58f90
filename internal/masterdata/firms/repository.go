package firms

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads firm records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a firm by id.
func (r *Repository) Get(ctx context.Context, id int64) (Firm, error) {
	var f Firm
	err := r.pool.QueryRow(ctx, `SELECT id, name, gstin, state_code, address, created_at FROM firms WHERE id=$1`, id).
		Scan(&f.ID, &f.Name, &f.GSTIN, &f.StateCode, &f.Address, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Firm{}, ErrFirmNotFound
		}
		return Firm{}, err
	}
	return f, nil
}
