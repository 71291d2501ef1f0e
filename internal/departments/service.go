package departments

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort defines data access methods for departments.
type RepositoryPort interface {
	List(ctx context.Context) ([]Department, error)
	Get(ctx context.Context, id int64) (Department, error)
	Create(ctx context.Context, name, code, description string) (Department, error)
	Update(ctx context.Context, id int64, name, code, description string) (Department, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles department business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all departments.
func (s *Service) List(ctx context.Context) ([]Department, error) {
	return s.repo.List(ctx)
}

// Get fetches a department by ID.
func (s *Service) Get(ctx context.Context, id int64) (Department, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a department. Codes are stored upper-cased.
func (s *Service) Create(ctx context.Context, name, code, description string) (Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Department{}, errors.New("departments: name required")
	}
	return s.repo.Create(ctx, name, strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(description))
}

// Update modifies a department.
func (s *Service) Update(ctx context.Context, id int64, name, code, description string) (Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Department{}, errors.New("departments: name required")
	}
	return s.repo.Update(ctx, id, name, strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(description))
}

// Delete removes a department.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
