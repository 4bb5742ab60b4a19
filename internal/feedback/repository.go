package feedback

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a feedback entry.
func (r *Repository) Create(ctx context.Context, e Entry) (Entry, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_feedback_user (id, user_name, user_email, user_image_url, description, location, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $7)
		RETURNING id, user_name, user_email, COALESCE(user_image_url, ''), description, COALESCE(location, ''), created_at, updated_at`,
		e.ID, e.UserName, e.UserEmail, e.UserImageURL, e.Description, e.Location, now).
		Scan(&e.ID, &e.UserName, &e.UserEmail, &e.UserImageURL, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns all feedback entries, newest first.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_name, user_email, COALESCE(user_image_url, ''), description, COALESCE(location, ''), created_at, updated_at
		FROM tbl_feedback_user ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserName, &e.UserEmail, &e.UserImageURL, &e.Description, &e.Location, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
