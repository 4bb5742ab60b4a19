package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GenQServe/citilyst-backend/internal/platform/db"
	"github.com/GenQServe/citilyst-backend/internal/rbac"
)

var (
	// ErrNotFound indicates no matching user row.
	ErrNotFound = errors.New("users: not found")
	// ErrEmailTaken indicates a unique violation on the email column.
	ErrEmailTaken = errors.New("users: email already registered")
)

const userColumns = `id, email, COALESCE(password, ''), COALESCE(name, ''), COALESCE(nik, ''),
	COALESCE(phone_number, ''), COALESCE(address, ''), COALESCE(image_url, ''), COALESCE(role, 'user'),
	is_verified, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.NIK,
		&u.PhoneNumber, &u.Address, &u.ImageURL, &u.Role,
		&u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_users (id, email, password, name, nik, phone_number, address, image_url, role, is_verified, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $11)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.Name, u.NIK, u.PhoneNumber, u.Address, u.ImageURL, u.Role, u.IsVerified, now)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return created, nil
}

// FindByID fetches a user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM tbl_users WHERE id = $1`, id))
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM tbl_users WHERE email = $1`, email))
}

// List returns all users ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM tbl_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update writes the mutable profile fields of a user.
func (r *Repository) Update(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tbl_users
		SET email = $2, password = NULLIF($3, ''), name = NULLIF($4, ''), nik = NULLIF($5, ''),
			phone_number = NULLIF($6, ''), address = NULLIF($7, ''), image_url = NULLIF($8, ''),
			is_verified = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.Name, u.NIK, u.PhoneNumber, u.Address, u.ImageURL, u.IsVerified, time.Now().UTC())
	return scanUser(row)
}

// SetVerified flips the verification flag for a user.
func (r *Repository) SetVerified(ctx context.Context, id string, verified bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tbl_users SET is_verified = $2, updated_at = $3 WHERE id = $1`,
		id, verified, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row together with the reports they submitted.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tbl_reports WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM tbl_users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RoleByID resolves the live role for a token subject. Satisfies
// rbac.UserDirectory.
func (r *Repository) RoleByID(ctx context.Context, id string) (rbac.Role, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(role, 'user') FROM tbl_users WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", rbac.ErrSubjectNotFound
		}
		return "", err
	}
	return rbac.Role(role), nil
}

var _ rbac.UserDirectory = (*Repository)(nil)
