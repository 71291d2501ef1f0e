package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/aurora-hris/aurora-hris/internal/auth"
	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/internal/shared"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

type stubRepo struct {
	user     *auth.User
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type stubAccess struct {
	access rbac.Access
}

func (s *stubAccess) EffectiveAccess(ctx context.Context, userID int64) (rbac.Access, error) {
	return s.access, nil
}

func newHandler(t *testing.T, repo auth.Repository) (*chi.Mux, *miniredis.Miniredis, *authz.Sessions) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := authz.NewSessions(client, time.Hour)
	access := &stubAccess{access: rbac.Access{
		Roles:       []string{"Staff"},
		Permissions: []string{"employee:read"},
		Modules:     []string{"employee-management"},
	}}
	handler := auth.NewHandler(nil, auth.NewService(repo, access, time.Hour), sessions)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router, mr, sessions
}

func hashedUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 7, Email: "user@aurora.local", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginSuccess(t *testing.T) {
	router, mr, _ := newHandler(t, &stubRepo{user: hashedUser(t)})

	body := `{"email":"user@aurora.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var envelope struct {
		Data struct {
			AccessToken string   `json:"access_token"`
			Roles       []string `json:"roles"`
			Permissions []string `json:"permissions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken == "" {
		t.Fatalf("expected access token in response")
	}
	if len(envelope.Data.Permissions) != 1 || envelope.Data.Permissions[0] != "employee:read" {
		t.Fatalf("expected flattened permissions, got %v", envelope.Data.Permissions)
	}
	if !mr.Exists("authz:token:" + envelope.Data.AccessToken) {
		t.Fatalf("expected persisted token key for the new session")
	}
	if !mr.Exists("authz:snapshot:" + envelope.Data.AccessToken) {
		t.Fatalf("expected persisted snapshot key for the new session")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _, _ := newHandler(t, &stubRepo{user: hashedUser(t)})

	body := `{"email":"user@aurora.local","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	router, _, _ := newHandler(t, &stubRepo{})

	body := `{"email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
}

func TestLogoutClearsPersistedState(t *testing.T) {
	repo := &stubRepo{user: hashedUser(t)}
	router, mr, sessions := newHandler(t, repo)

	snap := authz.NewSnapshot(authz.Actor{ID: 7}, "session-x", []string{"Staff"}, []string{"employee:read"}, nil)
	if err := sessions.Save(context.Background(), "session-x", snap); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	repo.sessions = map[string]int64{"session-x": 7}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(authz.ContextWithSessionID(req.Context(), "session-x"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if mr.Exists("authz:token:session-x") || mr.Exists("authz:snapshot:session-x") {
		t.Fatalf("expected persisted keys erased on logout")
	}
	if _, ok := repo.sessions["session-x"]; ok {
		t.Fatalf("expected session audit row removed")
	}
}

func TestMe(t *testing.T) {
	router, _, _ := newHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without snapshot, got %d", res.Code)
	}

	snap := authz.NewSnapshot(authz.Actor{ID: 7, Email: "user@aurora.local"}, "t", []string{"Staff"}, nil, nil)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(authz.ContextWithSnapshot(req.Context(), snap))
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 with snapshot, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "user@aurora.local") {
		t.Fatalf("expected identity in response body")
	}
}
