package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a report or category does not exist.
	ErrNotFound = errors.New("reports: not found")
	// ErrCategoryExists is returned on a duplicate category name.
	ErrCategoryExists = errors.New("reports: category already exists")
)

// Repository persists reports and categories in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `r.id, r.user_id, r.category_id, r.district_id, r.village_id,
	r.description, COALESCE(r.full_address, ''), COALESCE(r.image_urls, '{}'),
	COALESCE(r.document_url, ''), r.status, COALESCE(r.feedback, ''),
	r.created_at, r.updated_at,
	COALESCE(u.name, ''), COALESCE(c.name, ''), COALESCE(d.name, ''), COALESCE(v.name, '')`

const reportJoins = `FROM tbl_reports r
	LEFT JOIN tbl_users u ON u.id = r.user_id
	LEFT JOIN tbl_report_category c ON c.id = r.category_id
	LEFT JOIN tbl_district d ON d.id = r.district_id
	LEFT JOIN tbl_village v ON v.id = r.village_id`

func scanReport(row pgx.Row) (Report, error) {
	var rep Report
	err := row.Scan(
		&rep.ID, &rep.UserID, &rep.CategoryID, &rep.DistrictID, &rep.VillageID,
		&rep.Description, &rep.FullAddress, &rep.ImageURLs,
		&rep.DocumentURL, &rep.Status, &rep.Feedback,
		&rep.CreatedAt, &rep.UpdatedAt,
		&rep.ReporterName, &rep.CategoryName, &rep.DistrictName, &rep.VillageName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("scan report: %w", err)
	}
	return rep, nil
}

// Create inserts a new report and returns the stored record.
func (r *Repository) Create(ctx context.Context, rep Report) (Report, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tbl_reports (id, user_id, category_id, district_id, village_id,
			description, full_address, image_urls, document_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), $10, now(), now())`,
		rep.ID, rep.UserID, rep.CategoryID, rep.DistrictID, rep.VillageID,
		rep.Description, rep.FullAddress, rep.ImageURLs, rep.DocumentURL, rep.Status,
	)
	if err != nil {
		return Report{}, fmt.Errorf("insert report: %w", err)
	}
	return r.Get(ctx, rep.ID)
}

// Get loads a single report with its display fields.
func (r *Repository) Get(ctx context.Context, id string) (Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` `+reportJoins+` WHERE r.id = $1`, id)
	return scanReport(row)
}

// List returns every report, newest first.
func (r *Repository) List(ctx context.Context) ([]Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` `+reportJoins+` ORDER BY r.created_at DESC`)
}

// ListByUser returns a single user's reports, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Report, error) {
	return r.list(ctx, `SELECT `+reportColumns+` `+reportJoins+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Report, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets the review status and optional feedback.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, feedback string) (Report, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tbl_reports SET status = $2, feedback = NULLIF($3, ''), updated_at = now()
		WHERE id = $1`,
		id, status, feedback,
	)
	if err != nil {
		return Report{}, fmt.Errorf("update report status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Report{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a report.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tbl_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateCategory inserts a report category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tbl_report_category (id, name, description, created_at)
		VALUES ($1, $2, NULLIF($3, ''), now())
		RETURNING id, name, COALESCE(description, ''), created_at`,
		c.ID, c.Name, c.Description,
	)
	var out Category
	if err := row.Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrCategoryExists
		}
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return out, nil
}

// GetCategory loads a category by id.
func (r *Repository) GetCategory(ctx context.Context, id string) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM tbl_report_category WHERE id = $1`, id)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("scan category: %w", err)
	}
	return c, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM tbl_report_category ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCategory renames a category.
func (r *Repository) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tbl_report_category SET name = $2, description = NULLIF($3, '')
		WHERE id = $1
		RETURNING id, name, COALESCE(description, ''), created_at`,
		c.ID, c.Name, c.Description,
	)
	var out Category
	err := row.Scan(&out.ID, &out.Name, &out.Description, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrCategoryExists
		}
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return out, nil
}

// DeleteCategory removes a category.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tbl_report_category WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
