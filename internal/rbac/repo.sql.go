package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the role graph.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles ordered by priority, then name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, priority, created_at, updated_at FROM roles ORDER BY priority, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Priority, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, priority, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.Description, &role.Priority, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	return role, err
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, name, description string, priority int) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description, priority) VALUES ($1, $2, $3)
		 RETURNING id, name, description, priority, created_at, updated_at`,
		name, description, priority).
		Scan(&role.ID, &role.Name, &role.Description, &role.Priority, &role.CreatedAt, &role.UpdatedAt)
	return role, mapConflict(err)
}

// UpdateRole updates an existing role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, name, description string, priority int) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`UPDATE roles SET name = $2, description = $3, priority = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, description, priority, created_at, updated_at`,
		id, name, description, priority).
		Scan(&role.ID, &role.Name, &role.Description, &role.Priority, &role.CreatedAt, &role.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	return role, mapConflict(err)
}

// DeleteRole removes a role by ID.
func (r *Repository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListPermissions returns all permissions ordered by slug.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, name, module_id FROM permissions ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.ModuleID); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// UpsertPermission inserts a permission or refreshes its display name.
func (r *Repository) UpsertPermission(ctx context.Context, slug, name string, moduleID int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (slug, name, module_id) VALUES ($1, $2, $3)
		 ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, module_id = EXCLUDED.module_id
		 RETURNING id, slug, name, module_id`,
		slug, name, moduleID).
		Scan(&p.ID, &p.Slug, &p.Name, &p.ModuleID)
	return p, err
}

// ListModules returns the full module catalog in its stored order.
func (r *Repository) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, slug, name, description, icon, sort_order, is_active, is_standalone FROM modules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Description, &m.Icon, &m.Order, &m.IsActive, &m.IsStandalone); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// UpsertModule inserts a module or refreshes its catalog attributes.
func (r *Repository) UpsertModule(ctx context.Context, m Module) (Module, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO modules (slug, name, description, icon, sort_order, is_active, is_standalone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (slug) DO UPDATE SET
		   name = EXCLUDED.name, description = EXCLUDED.description, icon = EXCLUDED.icon,
		   sort_order = EXCLUDED.sort_order, is_active = EXCLUDED.is_active, is_standalone = EXCLUDED.is_standalone
		 RETURNING id, slug, name, description, icon, sort_order, is_active, is_standalone`,
		m.Slug, m.Name, m.Description, m.Icon, m.Order, m.IsActive, m.IsStandalone).
		Scan(&m.ID, &m.Slug, &m.Name, &m.Description, &m.Icon, &m.Order, &m.IsActive, &m.IsStandalone)
	return m, err
}

// ListRolePermissionIDs returns the permission IDs attached to a role.
func (r *Repository) ListRolePermissionIDs(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission_id FROM role_permissions WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AttachPermission links a permission to a role.
func (r *Repository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		roleID, permissionID)
	return err
}

// DetachPermission unlinks a permission from a role.
func (r *Repository) DetachPermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	return err
}

// ListRoleModuleAccess returns a role's module grants.
func (r *Repository) ListRoleModuleAccess(ctx context.Context, roleID int64) ([]ModuleAccess, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role_id, module_id, can_access FROM role_modules WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grants []ModuleAccess
	for rows.Next() {
		var g ModuleAccess
		if err := rows.Scan(&g.RoleID, &g.ModuleID, &g.CanAccess); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// UpsertRoleModuleAccess records a role's grant flag for one module.
func (r *Repository) UpsertRoleModuleAccess(ctx context.Context, access ModuleAccess) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_modules (role_id, module_id, can_access) VALUES ($1, $2, $3)
		 ON CONFLICT (role_id, module_id) DO UPDATE SET can_access = EXCLUDED.can_access`,
		access.RoleID, access.ModuleID, access.CanAccess)
	return err
}

// AssignRole links a role to a user.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

// RemoveRole unlinks a role from a user.
func (r *Repository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return err
}

// UserRoleNames returns the names of every role assigned to a user.
func (r *Repository) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	return r.stringColumn(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name`, userID)
}

// UserPermissionSlugs returns the deduplicated permission slugs granted to
// a user through any of its roles.
func (r *Repository) UserPermissionSlugs(ctx context.Context, userID int64) ([]string, error) {
	return r.stringColumn(ctx,
		`SELECT DISTINCT p.slug FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = $1
		 ORDER BY p.slug`, userID)
}

// UserModuleSlugs returns the modules effectively accessible to a user:
// globally active modules granted with can_access by at least one role.
func (r *Repository) UserModuleSlugs(ctx context.Context, userID int64) ([]string, error) {
	return r.stringColumn(ctx,
		`SELECT DISTINCT m.slug FROM modules m
		 JOIN role_modules rm ON rm.module_id = m.id AND rm.can_access
		 JOIN user_roles ur ON ur.role_id = rm.role_id
		 WHERE ur.user_id = $1 AND m.is_active
		 ORDER BY m.slug`, userID)
}

// UserIDsWithRole returns every user assigned to a role.
func (r *Repository) UserIDsWithRole(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM user_roles WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) stringColumn(ctx context.Context, query string, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// mapConflict translates unique violations into shared.ErrConflict.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrConflict
	}
	return err
}
