package districts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no matching district row.
var ErrNotFound = errors.New("districts: not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all districts ordered by name.
func (r *Repository) List(ctx context.Context) ([]District, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM tbl_district ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get fetches a district by id.
func (r *Repository) Get(ctx context.Context, id string) (District, error) {
	var d District
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM tbl_district WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return District{}, ErrNotFound
		}
		return District{}, err
	}
	return d, nil
}

// Create inserts a new district.
func (r *Repository) Create(ctx context.Context, id, name string) (District, error) {
	now := time.Now().UTC()
	var d District
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_district (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id, name, created_at, updated_at`,
		id, name, now).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return District{}, err
	}
	return d, nil
}

// Update renames a district.
func (r *Repository) Update(ctx context.Context, id, name string) (District, error) {
	var d District
	err := r.pool.QueryRow(ctx, `
		UPDATE tbl_district SET name = $2, updated_at = $3 WHERE id = $1
		RETURNING id, name, created_at, updated_at`,
		id, name, time.Now().UTC()).
		Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return District{}, ErrNotFound
		}
		return District{}, err
	}
	return d, nil
}

// Delete removes a district.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tbl_district WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
