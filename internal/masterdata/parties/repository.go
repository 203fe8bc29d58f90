package parties

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads party records from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a party scoped to the firm.
func (r *Repository) Get(ctx context.Context, firmID, id int64) (Party, error) {
	var p Party
	err := r.pool.QueryRow(ctx, `SELECT id, firm_id, name, address, gstin, state, state_code, created_at, updated_at
FROM parties WHERE id=$1 AND firm_id=$2`, id, firmID).
		Scan(&p.ID, &p.FirmID, &p.Name, &p.Address, &p.GSTIN, &p.State, &p.StateCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Party{}, ErrPartyNotFound
		}
		return Party{}, err
	}
	return p, nil
}

// List returns the firm's parties ordered by name.
func (r *Repository) List(ctx context.Context, firmID int64, limit int) ([]Party, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, firm_id, name, address, gstin, state, state_code, created_at, updated_at
FROM parties WHERE firm_id=$1 ORDER BY name ASC LIMIT $2`, firmID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.FirmID, &p.Name, &p.Address, &p.GSTIN, &p.State, &p.StateCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
