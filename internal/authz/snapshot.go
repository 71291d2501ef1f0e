package authz

import (
	"encoding/json"
	"sort"
	"strings"
)

// SuperAdminRole is the privileged role name that bypasses module gating.
// Permission checks are never bypassed, not even for this role.
const SuperAdminRole = "Super Admin"

// Actor identifies the authenticated user inside a snapshot.
type Actor struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Snapshot is the flattened, denormalized view of an actor's effective
// authorization state: role names, permission slugs and accessible module
// slugs, derived once at login from the role graph. It is never updated
// incrementally; a role or permission change server-side only becomes
// visible through a wholesale replacement at the next login or refresh.
type Snapshot struct {
	actor       Actor
	accessToken string
	roles       map[string]struct{}
	permissions map[string]struct{}
	modules     map[string]struct{}
}

// NewSnapshot builds a snapshot from the flattened lists produced by the
// authentication flow. Permission and module slugs are normalized to
// lower case; duplicates and blanks are dropped.
func NewSnapshot(actor Actor, accessToken string, roles, permissions, modules []string) *Snapshot {
	return &Snapshot{
		actor:       actor,
		accessToken: accessToken,
		roles:       toSet(roles, false),
		permissions: toSet(permissions, true),
		modules:     toSet(modules, true),
	}
}

// Actor returns the snapshot's identity.
func (s *Snapshot) Actor() Actor {
	if s == nil {
		return Actor{}
	}
	return s.actor
}

// AccessToken returns the bearer token captured at login.
func (s *Snapshot) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.accessToken
}

// HasPermission reports whether the slug is in the actor's flattened
// permission set. A nil snapshot fails closed.
func (s *Snapshot) HasPermission(slug string) bool {
	if s == nil {
		return false
	}
	_, ok := s.permissions[normalizeSlug(slug)]
	return ok
}

// HasAnyPermission reports whether at least one slug is granted.
// An empty list yields false: there exists no granted element.
func (s *Snapshot) HasAnyPermission(slugs []string) bool {
	for _, slug := range slugs {
		if s.HasPermission(slug) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every slug is granted. An empty list
// yields true, mirroring universal quantification over an empty set.
// The asymmetry with HasAnyPermission is deliberate.
func (s *Snapshot) HasAllPermissions(slugs []string) bool {
	if s == nil {
		return len(slugs) == 0
	}
	for _, slug := range slugs {
		if !s.HasPermission(slug) {
			return false
		}
	}
	return true
}

// HasModuleAccess reports whether the actor may enter the module. The
// super-admin role, and an actor with zero module grants, bypass the
// check entirely and are allowed into every module. The bypass never
// extends to permission slugs.
func (s *Snapshot) HasModuleAccess(moduleSlug string) bool {
	if s == nil {
		return false
	}
	if s.BypassesModuleChecks() {
		return true
	}
	_, ok := s.modules[normalizeSlug(moduleSlug)]
	return ok
}

// BypassesModuleChecks reports whether module gating is skipped for this
// actor: either the privileged role is assigned, or no module grants
// exist at all (the not-yet-configured fallback).
func (s *Snapshot) BypassesModuleChecks() bool {
	if s == nil {
		return false
	}
	if s.HasRole(SuperAdminRole) {
		return true
	}
	return len(s.modules) == 0
}

// HasRole reports whether the actor carries the named role. Comparison
// is case-insensitive.
func (s *Snapshot) HasRole(name string) bool {
	if s == nil {
		return false
	}
	for role := range s.roles {
		if strings.EqualFold(role, name) {
			return true
		}
	}
	return false
}

// Roles returns the actor's role names, sorted.
func (s *Snapshot) Roles() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.roles)
}

// Permissions returns the actor's permission slugs, sorted.
func (s *Snapshot) Permissions() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.permissions)
}

// Modules returns the actor's accessible module slugs, sorted.
func (s *Snapshot) Modules() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.modules)
}

type snapshotPayload struct {
	User        Actor    `json:"user"`
	AccessToken string   `json:"access_token"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
	Modules     []string `json:"modules"`
}

// MarshalJSON serializes the snapshot with its sets as arrays. Order is
// insignificant; sorted output keeps the payload deterministic.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotPayload{
		User:        s.Actor(),
		AccessToken: s.AccessToken(),
		Roles:       s.Roles(),
		Permissions: s.Permissions(),
		Modules:     s.Modules(),
	})
}

// UnmarshalJSON restores a persisted snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var payload snapshotPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*s = *NewSnapshot(payload.User, payload.AccessToken, payload.Roles, payload.Permissions, payload.Modules)
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func toSet(values []string, lower bool) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
