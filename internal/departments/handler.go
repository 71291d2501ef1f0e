package departments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Handler wires department endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers department routes behind the organization module gate.
func (h *Handler) MountRoutes(r chi.Router, gate authz.Gate) {
	r.Route("/departments", func(r chi.Router) {
		r.Use(gate.RequireModule(shared.ModuleOrganization))
		r.With(gate.RequireAny(shared.PermDepartmentsView)).Get("/", h.list)
		r.With(gate.RequireAny(shared.PermDepartmentsView)).Get("/{id}", h.get)
		r.With(gate.RequireAny(shared.PermDepartmentsEdit)).Post("/", h.create)
		r.With(gate.RequireAny(shared.PermDepartmentsEdit)).Put("/{id}", h.update)
		r.With(gate.RequireAny(shared.PermDepartmentsEdit)).Delete("/{id}", h.remove)
	})
}

type departmentForm struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Code        string `json:"code" validate:"required,min=2,max=16"`
	Description string `json:"description" validate:"max=255"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.List(r.Context())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, departments)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	department, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, department)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form departmentForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	department, err := h.service.Create(r.Context(), form.Name, form.Code, form.Description)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, department)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form departmentForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	department, err := h.service.Update(r.Context(), id, form.Name, form.Code, form.Description)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, department)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(w, http.StatusBadRequest, "invalid identifier")
		return 0, false
	}
	return id, true
}
