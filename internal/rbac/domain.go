package rbac

import "time"

// Role is a named bundle of permissions and module grants. Priority is an
// ordering weight used when listing roles; the privileged role is matched
// by name, not priority.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is the smallest unit of authorization, identified by a
// stable slug of the form resource:action and scoped to one module.
type Permission struct {
	ID       int64  `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	ModuleID int64  `json:"module_id"`
}

// Module is a top-level functional area that can be disabled system-wide
// and granted per role.
type Module struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	Order        int    `json:"order"`
	IsActive     bool   `json:"is_active"`
	IsStandalone bool   `json:"is_standalone"`
}

// ModuleAccess is a role's grant on a module. CanAccess is independent of
// the module's global IsActive flag; both must hold for effective access.
type ModuleAccess struct {
	RoleID    int64 `json:"role_id"`
	ModuleID  int64 `json:"module_id"`
	CanAccess bool  `json:"can_access"`
}

// Access is the flattened view of a user's effective authorization,
// derived from the role graph: the union of role names, permission slugs
// and accessible module slugs across every assigned role.
type Access struct {
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Modules     []string `json:"modules"`
}

// Directory bundles the full catalog for the administration screens.
type Directory struct {
	Roles       []Role       `json:"roles"`
	Permissions []Permission `json:"permissions"`
	Modules     []Module     `json:"modules"`
}
