package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Handler wires the RBAC administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the administration routes, gated per operation.
func (h *Handler) MountRoutes(r chi.Router, gate authz.Gate) {
	r.Route("/roles", func(r chi.Router) {
		r.With(gate.RequireAny(shared.PermRolesView)).Get("/", h.listRoles)
		r.With(gate.RequireAny(shared.PermRolesEdit)).Post("/", h.createRole)
		r.With(gate.RequireAny(shared.PermRolesEdit)).Put("/{id}", h.updateRole)
		r.With(gate.RequireAny(shared.PermRolesEdit)).Delete("/{id}", h.deleteRole)
		r.With(gate.RequireAll(shared.PermRolesEdit, shared.PermPermissionsView)).
			Put("/{id}/permissions", h.setRolePermissions)
		r.With(gate.RequireAll(shared.PermRolesEdit, shared.PermModulesView)).
			Put("/{id}/modules", h.setRoleModules)
	})
	r.With(gate.RequireAny(shared.PermPermissionsView)).Get("/permissions", h.listPermissions)
	r.With(gate.RequireAny(shared.PermModulesView)).Get("/modules", h.listModules)
	r.With(gate.RequireAny(shared.PermModulesEdit)).Put("/modules", h.upsertModule)
	r.Route("/users/{id}/roles", func(r chi.Router) {
		r.With(gate.RequireAny(shared.PermUsersEdit)).Post("/{roleID}", h.assignRole)
		r.With(gate.RequireAny(shared.PermUsersEdit)).Delete("/{roleID}", h.removeRole)
	})
	r.With(gate.RequireAny(shared.CoreScopes()...)).Get("/directory", h.directory)
}

type roleForm struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
	Priority    int    `json:"priority" validate:"gte=0,lte=1000"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var form roleForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	role, err := h.service.CreateRole(r.Context(), form.Name, form.Description, form.Priority)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var form roleForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	role, err := h.service.UpdateRole(r.Context(), id, form.Name, form.Description, form.Priority)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rolePermissionsForm struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"dive,gt=0"`
}

func (h *Handler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var form rolePermissionsForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), id, form.PermissionIDs); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleModulesForm struct {
	Grants []ModuleAccess `json:"grants" validate:"dive"`
}

func (h *Handler) setRoleModules(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var form roleModulesForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	if err := h.service.SetRoleModuleAccess(r.Context(), id, form.Grants); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, perms)
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.service.ListModules(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, modules)
}

type moduleForm struct {
	Slug         string `json:"slug" validate:"required,min=2,max=64"`
	Name         string `json:"name" validate:"required,max=128"`
	Description  string `json:"description" validate:"max=255"`
	Icon         string `json:"icon" validate:"max=64"`
	Order        int    `json:"order" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
	IsStandalone bool   `json:"is_standalone"`
}

func (h *Handler) upsertModule(w http.ResponseWriter, r *http.Request) {
	var form moduleForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	module, err := h.service.EnsureModule(r.Context(), Module{
		Slug:         form.Slug,
		Name:         form.Name,
		Description:  form.Description,
		Icon:         form.Icon,
		Order:        form.Order,
		IsActive:     form.IsActive,
		IsStandalone: form.IsStandalone,
	})
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, module)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.service.AssignRole(r.Context(), userID, roleID); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roleID, ok := pathID(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.service.RemoveRole(r.Context(), userID, roleID); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) directory(w http.ResponseWriter, r *http.Request) {
	dir, err := h.service.Directory(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, dir)
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := shared.DecodeJSON(r, dst); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid identifier")
		return 0, false
	}
	return id, true
}
