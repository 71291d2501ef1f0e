package employees

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Handler wires employee endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers employee routes behind the employee module gate.
func (h *Handler) MountRoutes(r chi.Router, gate authz.Gate) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(gate.RequireModule(shared.ModuleEmployeeManagement))
		r.With(gate.RequireAny(shared.PermEmployeesView)).Get("/", h.list)
		r.With(gate.RequireAny(shared.PermEmployeesView)).Get("/{id}", h.get)
		r.With(gate.RequireAny(shared.PermEmployeesEdit)).Post("/", h.create)
		r.With(gate.RequireAny(shared.PermEmployeesEdit)).Put("/{id}", h.update)
		r.With(gate.RequireAny(shared.PermEmployeesEdit)).Delete("/{id}", h.remove)
	})
}

type employeeForm struct {
	EmployeeNo   string `json:"employee_no" validate:"required,min=2,max=32"`
	FirstName    string `json:"first_name" validate:"required,max=64"`
	LastName     string `json:"last_name" validate:"required,max=64"`
	Email        string `json:"email" validate:"required,email"`
	DepartmentID int64  `json:"department_id" validate:"required,gt=0"`
	Position     string `json:"position" validate:"max=128"`
	HireDate     string `json:"hire_date" validate:"required,datetime=2006-01-02"`
	IsActive     bool   `json:"is_active"`
}

func (f employeeForm) toRecord(id int64) Employee {
	hireDate, _ := time.Parse("2006-01-02", f.HireDate)
	return Employee{
		ID:           id,
		EmployeeNo:   f.EmployeeNo,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		Email:        f.Email,
		DepartmentID: f.DepartmentID,
		Position:     f.Position,
		HireDate:     hireDate,
		IsActive:     f.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	departmentID, _ := strconv.ParseInt(r.URL.Query().Get("department_id"), 10, 64)
	filters := ListFilters{
		Search:       r.URL.Query().Get("q"),
		DepartmentID: departmentID,
		Page:         page,
		PerPage:      perPage,
	}
	records, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondList(w, records, shared.NewPagination(page, perPage, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, record)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form employeeForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	record, err := h.service.Create(r.Context(), form.toRecord(0))
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var form employeeForm
	if !h.decodeValid(w, r, &form) {
		return
	}
	record, err := h.service.Update(r.Context(), form.toRecord(id))
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, record)
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
