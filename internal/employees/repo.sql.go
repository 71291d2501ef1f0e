package employees

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

const employeeColumns = `id, employee_no, first_name, last_name, email, department_id, position, hire_date, is_active, created_at, updated_at`

// List returns a page of employees matching the filters, plus the total
// match count for pagination.
func (r *Repository) List(ctx context.Context, f ListFilters) ([]Employee, int, error) {
	where := ` WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%' OR employee_no ILIKE '%' || $1 || '%')
		 AND ($2 = 0 OR department_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM employees`+where, f.Search, f.DepartmentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(f.Page, f.PerPage, total)
	rows, err := r.pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees`+where+` ORDER BY last_name, first_name LIMIT $3 OFFSET $4`,
		f.Search, f.DepartmentID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, e)
	}
	return employees, total, rows.Err()
}

// Get fetches an employee by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return e, err
}

// Create inserts a new employee.
func (r *Repository) Create(ctx context.Context, e Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO employees (employee_no, first_name, last_name, email, department_id, position, hire_date, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+employeeColumns,
		e.EmployeeNo, e.FirstName, e.LastName, e.Email, e.DepartmentID, e.Position, e.HireDate, e.IsActive)
	created, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, shared.ErrConflict
		}
		return Employee{}, err
	}
	return created, nil
}

// Update modifies an existing employee.
func (r *Repository) Update(ctx context.Context, e Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE employees SET first_name = $2, last_name = $3, email = $4, department_id = $5,
		   position = $6, hire_date = $7, is_active = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING `+employeeColumns,
		e.ID, e.FirstName, e.LastName, e.Email, e.DepartmentID, e.Position, e.HireDate, e.IsActive)
	updated, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return updated, err
}

// Delete removes an employee record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.EmployeeNo, &e.FirstName, &e.LastName, &e.Email, &e.DepartmentID,
		&e.Position, &e.HireDate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
