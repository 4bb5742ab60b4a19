package villages

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no matching village row.
var ErrNotFound = errors.New("villages: not found")

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all villages, optionally filtered by district.
func (r *Repository) List(ctx context.Context, districtID string) ([]Village, error) {
	query := `SELECT id, name, district_id, created_at, updated_at FROM tbl_village ORDER BY name`
	args := []any{}
	if districtID != "" {
		query = `SELECT id, name, district_id, created_at, updated_at FROM tbl_village WHERE district_id = $1 ORDER BY name`
		args = append(args, districtID)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Village
	for rows.Next() {
		var v Village
		if err := rows.Scan(&v.ID, &v.Name, &v.DistrictID, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get fetches a village by id.
func (r *Repository) Get(ctx context.Context, id string) (Village, error) {
	var v Village
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, district_id, created_at, updated_at FROM tbl_village WHERE id = $1`, id).
		Scan(&v.ID, &v.Name, &v.DistrictID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Village{}, ErrNotFound
		}
		return Village{}, err
	}
	return v, nil
}

// Create inserts a new village.
func (r *Repository) Create(ctx context.Context, id, name, districtID string) (Village, error) {
	now := time.Now().UTC()
	var v Village
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_village (id, name, district_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, name, district_id, created_at, updated_at`,
		id, name, districtID, now).
		Scan(&v.ID, &v.Name, &v.DistrictID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Village{}, err
	}
	return v, nil
}

// Update changes a village's name or district.
func (r *Repository) Update(ctx context.Context, id, name, districtID string) (Village, error) {
	var v Village
	err := r.pool.QueryRow(ctx, `
		UPDATE tbl_village SET name = $2, district_id = $3, updated_at = $4 WHERE id = $1
		RETURNING id, name, district_id, created_at, updated_at`,
		id, name, districtID, time.Now().UTC()).
		Scan(&v.ID, &v.Name, &v.DistrictID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Village{}, ErrNotFound
		}
		return Village{}, err
	}
	return v, nil
}

// Delete removes a village.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tbl_village WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
