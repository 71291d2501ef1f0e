package employees_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/employees"
	"github.com/aurora-hris/aurora-hris/internal/shared"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

type stubRepo struct {
	records []employees.Employee
	created *employees.Employee
}

func (s *stubRepo) List(ctx context.Context, f employees.ListFilters) ([]employees.Employee, int, error) {
	return s.records, len(s.records), nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (employees.Employee, error) {
	for _, e := range s.records {
		if e.ID == id {
			return e, nil
		}
	}
	return employees.Employee{}, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	e.ID = 99
	s.created = &e
	return e, nil
}

func (s *stubRepo) Update(ctx context.Context, e employees.Employee) (employees.Employee, error) {
	return e, nil
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func newRouter(repo *stubRepo) *chi.Mux {
	handler := employees.NewHandler(nil, employees.NewService(repo))
	router := chi.NewRouter()
	handler.MountRoutes(router, authz.Gate{})
	return router
}

func request(t *testing.T, router http.Handler, method, target, body string, snap *authz.Snapshot) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if snap != nil {
		req = req.WithContext(authz.ContextWithSnapshot(req.Context(), snap))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func hrOfficer() *authz.Snapshot {
	return authz.NewSnapshot(authz.Actor{ID: 3}, "t",
		[]string{"HR Officer"},
		[]string{shared.PermEmployeesView, shared.PermEmployeesEdit},
		[]string{shared.ModuleEmployeeManagement})
}

func TestListRequiresAuthentication(t *testing.T) {
	router := newRouter(&stubRepo{})
	res := request(t, router, http.MethodGet, "/employees/", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestListWithAccess(t *testing.T) {
	repo := &stubRepo{records: []employees.Employee{{
		ID: 1, EmployeeNo: "EMP-001", FirstName: "Sari", LastName: "Putri",
		Email: "sari@aurora.local", DepartmentID: 2, HireDate: time.Now(), IsActive: true,
	}}}
	router := newRouter(repo)
	res := request(t, router, http.MethodGet, "/employees/", "", hrOfficer())
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "EMP-001") {
		t.Fatalf("expected record in body")
	}
	if !strings.Contains(res.Body.String(), "pagination") {
		t.Fatalf("expected pagination metadata in envelope")
	}
}

func TestReadOnlyActorCannotWrite(t *testing.T) {
	router := newRouter(&stubRepo{})
	viewer := authz.NewSnapshot(authz.Actor{ID: 4}, "t",
		[]string{"Staff"},
		[]string{shared.PermEmployeesView},
		[]string{shared.ModuleEmployeeManagement})

	body := `{"employee_no":"EMP-002","first_name":"Budi","last_name":"Santoso","email":"budi@aurora.local","department_id":2,"hire_date":"2026-01-15","is_active":true}`
	res := request(t, router, http.MethodPost, "/employees/", body, viewer)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for read-only actor, got %d", res.Code)
	}

	res = request(t, router, http.MethodGet, "/employees/", "", viewer)
	if res.Code != http.StatusOK {
		t.Fatalf("read access must still work, got %d", res.Code)
	}
}

func TestModuleGateBlocksWithoutModule(t *testing.T) {
	router := newRouter(&stubRepo{})
	outsider := authz.NewSnapshot(authz.Actor{ID: 5}, "t",
		[]string{"Recruiter"},
		[]string{shared.PermEmployeesView},
		[]string{"recruitment"})
	res := request(t, router, http.MethodGet, "/employees/", "", outsider)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without the module grant, got %d", res.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	router := newRouter(&stubRepo{})
	body := `{"employee_no":"E","first_name":"","last_name":"Santoso","email":"nope","department_id":0,"hire_date":"15-01-2026"}`
	res := request(t, router, http.MethodPost, "/employees/", body, hrOfficer())
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
}

func TestCreate(t *testing.T) {
	repo := &stubRepo{}
	router := newRouter(repo)
	body := `{"employee_no":"EMP-002","first_name":"Budi","last_name":"Santoso","email":"budi@aurora.local","department_id":2,"position":"Analyst","hire_date":"2026-01-15","is_active":true}`
	res := request(t, router, http.MethodPost, "/employees/", body, hrOfficer())
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if repo.created == nil || repo.created.EmployeeNo != "EMP-002" {
		t.Fatalf("expected record passed to repository")
	}
}
