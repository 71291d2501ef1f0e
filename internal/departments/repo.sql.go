package departments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all departments ordered by name.
func (r *Repository) List(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, description, created_at, updated_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// Get fetches a department by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, description, created_at, updated_at FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, shared.ErrNotFound
	}
	return d, err
}

// Create inserts a new department.
func (r *Repository) Create(ctx context.Context, name, code, description string) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`INSERT INTO departments (name, code, description) VALUES ($1, $2, $3)
		 RETURNING id, name, code, description, created_at, updated_at`,
		name, code, description).
		Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Department{}, shared.ErrConflict
		}
		return Department{}, err
	}
	return d, nil
}

// Update modifies an existing department.
func (r *Repository) Update(ctx context.Context, id int64, name, code, description string) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`UPDATE departments SET name = $2, code = $3, description = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, code, description, created_at, updated_at`,
		id, name, code, description).
		Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, shared.ErrNotFound
	}
	return d, err
}

// Delete removes a department.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
