package employees

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	List(ctx context.Context, f ListFilters) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles employee business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of employees with the total match count.
func (s *Service) List(ctx context.Context, f ListFilters) ([]Employee, int, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

// Get fetches an employee by ID.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts an employee record.
func (s *Service) Create(ctx context.Context, e Employee) (Employee, error) {
	if err := validateRecord(e); err != nil {
		return Employee{}, err
	}
	return s.repo.Create(ctx, e)
}

// Update modifies an employee record.
func (s *Service) Update(ctx context.Context, e Employee) (Employee, error) {
	if err := validateRecord(e); err != nil {
		return Employee{}, err
	}
	return s.repo.Update(ctx, e)
}

// Delete removes an employee record.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateRecord(e Employee) error {
	if strings.TrimSpace(e.FirstName) == "" || strings.TrimSpace(e.LastName) == "" {
		return errors.New("employees: name required")
	}
	if e.DepartmentID <= 0 {
		return errors.New("employees: department required")
	}
	return nil
}
