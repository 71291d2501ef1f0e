package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugs follow resource:action; evaluation trusts the snapshot, so the
// format is enforced on the write path only.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*:[a-z][a-z0-9-]*$`)

// RepositoryPort defines data access methods for the role graph.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name, description string, priority int) (Role, error)
	UpdateRole(ctx context.Context, id int64, name, description string, priority int) (Role, error)
	DeleteRole(ctx context.Context, id int64) error

	ListPermissions(ctx context.Context) ([]Permission, error)
	UpsertPermission(ctx context.Context, slug, name string, moduleID int64) (Permission, error)

	ListModules(ctx context.Context) ([]Module, error)
	UpsertModule(ctx context.Context, m Module) (Module, error)

	ListRolePermissionIDs(ctx context.Context, roleID int64) ([]int64, error)
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	DetachPermission(ctx context.Context, roleID, permissionID int64) error

	ListRoleModuleAccess(ctx context.Context, roleID int64) ([]ModuleAccess, error)
	UpsertRoleModuleAccess(ctx context.Context, access ModuleAccess) error

	AssignRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error

	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	UserPermissionSlugs(ctx context.Context, userID int64) ([]string, error)
	UserModuleSlugs(ctx context.Context, userID int64) ([]string, error)
	UserIDsWithRole(ctx context.Context, roleID int64) ([]int64, error)
}

// SnapshotInvalidator erases persisted snapshots after role graph changes,
// so stale client state disappears before the next login.
type SnapshotInvalidator interface {
	InvalidateUsers(ctx context.Context, userIDs []int64) error
}

// Service orchestrates RBAC operations.
type Service struct {
	repo        RepositoryPort
	invalidator SnapshotInvalidator
	logger      *slog.Logger
	flatten     singleflight.Group
	titler      cases.Caser
}

// NewService constructs a Service. The invalidator may be nil; changes
// then only take effect at the next login.
func NewService(repo RepositoryPort, invalidator SnapshotInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
		titler:      cases.Title(language.English),
	}
}

// ListRoles returns all roles ordered by priority.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string, priority int) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description), priority)
}

// UpdateRole updates an existing role and invalidates its members'
// snapshots: a rename changes every member's flattened role list.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, description string, priority int) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	role, err := s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(description), priority)
	if err != nil {
		return Role{}, err
	}
	s.invalidateRoleMembers(ctx, id)
	return role, nil
}

// DeleteRole removes a role by ID.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	members, err := s.repo.UserIDsWithRole(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, members)
	return nil
}

// ListPermissions returns the full permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission, validating the slug format.
func (s *Service) EnsurePermission(ctx context.Context, slug, name string, moduleID int64) (Permission, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return Permission{}, fmt.Errorf("rbac: invalid permission slug %q", slug)
	}
	return s.repo.UpsertPermission(ctx, slug, strings.TrimSpace(name), moduleID)
}

// ListModules returns the module catalog in stored order.
func (s *Service) ListModules(ctx context.Context) ([]Module, error) {
	return s.repo.ListModules(ctx)
}

// EnsureModule upserts a module, normalizing its display name.
func (s *Service) EnsureModule(ctx context.Context, m Module) (Module, error) {
	m.Slug = strings.ToLower(strings.TrimSpace(m.Slug))
	if m.Slug == "" {
		return Module{}, errors.New("rbac: module slug required")
	}
	m.Name = s.titler.String(strings.TrimSpace(m.Name))
	return s.repo.UpsertModule(ctx, m)
}

// SetRolePermissions replaces a role's permission set by diffing against
// the current assignments, then invalidates member snapshots.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	current, err := s.repo.ListRolePermissionIDs(ctx, roleID)
	if err != nil {
		return err
	}
	existing := make(map[int64]struct{}, len(current))
	for _, id := range current {
		existing[id] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(permissionIDs))
	for _, id := range permissionIDs {
		keep[id] = struct{}{}
		if _, ok := existing[id]; !ok {
			if err := s.repo.AttachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	for id := range existing {
		if _, ok := keep[id]; !ok {
			if err := s.repo.DetachPermission(ctx, roleID, id); err != nil {
				return err
			}
		}
	}
	s.invalidateRoleMembers(ctx, roleID)
	return nil
}

// SetRoleModuleAccess records a role's module grants and invalidates
// member snapshots.
func (s *Service) SetRoleModuleAccess(ctx context.Context, roleID int64, grants []ModuleAccess) error {
	for _, grant := range grants {
		grant.RoleID = roleID
		if err := s.repo.UpsertRoleModuleAccess(ctx, grant); err != nil {
			return err
		}
	}
	s.invalidateRoleMembers(ctx, roleID)
	return nil
}

// AssignRole assigns a role to a user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.AssignRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, []int64{userID})
	return nil
}

// RemoveRole removes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if err := s.repo.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.invalidate(ctx, []int64{userID})
	return nil
}

// EffectiveAccess flattens the role graph for a user into role names,
// permission slugs and accessible module slugs. Concurrent calls for the
// same user share one computation.
func (s *Service) EffectiveAccess(ctx context.Context, userID int64) (Access, error) {
	v, err, _ := s.flatten.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		roles, err := s.repo.UserRoleNames(ctx, userID)
		if err != nil {
			return Access{}, err
		}
		perms, err := s.repo.UserPermissionSlugs(ctx, userID)
		if err != nil {
			return Access{}, err
		}
		modules, err := s.repo.UserModuleSlugs(ctx, userID)
		if err != nil {
			return Access{}, err
		}
		return Access{Roles: roles, Permissions: perms, Modules: modules}, nil
	})
	if err != nil {
		return Access{}, err
	}
	return v.(Access), nil
}

// Directory loads roles, permissions and modules concurrently.
func (s *Service) Directory(ctx context.Context) (Directory, error) {
	var dir Directory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dir.Roles, err = s.repo.ListRoles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dir.Permissions, err = s.repo.ListPermissions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		dir.Modules, err = s.repo.ListModules(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Directory{}, err
	}
	return dir, nil
}

func (s *Service) invalidateRoleMembers(ctx context.Context, roleID int64) {
	members, err := s.repo.UserIDsWithRole(ctx, roleID)
	if err != nil {
		s.logger.Error("list role members for invalidation", slog.Any("error", err))
		return
	}
	s.invalidate(ctx, members)
}

func (s *Service) invalidate(ctx context.Context, userIDs []int64) {
	if s.invalidator == nil || len(userIDs) == 0 {
		return
	}
	if err := s.invalidator.InvalidateUsers(ctx, userIDs); err != nil {
		s.logger.Error("enqueue snapshot invalidation", slog.Any("error", err))
	}
}

var _ RepositoryPort = (*Repository)(nil)
