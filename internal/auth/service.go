package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// AccessSource flattens the role graph for an authenticated user.
// Implemented by the rbac service.
type AccessSource interface {
	EffectiveAccess(ctx context.Context, userID int64) (rbac.Access, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	access AccessSource
	ttl    time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, access AccessSource, ttl time.Duration) *Service {
	return &Service{repo: repo, access: access, ttl: ttl}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and produces a fresh snapshot: identity plus the
// flattened role, permission and module sets, under a new opaque bearer
// token. The token doubles as the session identifier. A session audit row
// is written to Postgres.
func (s *Service) Login(ctx context.Context, email, password, ip, ua string) (*authz.Snapshot, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	access, err := s.access.EffectiveAccess(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	snap := authz.NewSnapshot(
		authz.Actor{ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName},
		token,
		access.Roles,
		access.Permissions,
		access.Modules,
	)
	if err := s.repo.CreateSession(ctx, token, user.ID, time.Now().Add(s.ttl), ip, ua); err != nil {
		return nil, err
	}
	return snap, nil
}

// Logout removes the session audit row.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}

// SessionTTL exposes the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}
