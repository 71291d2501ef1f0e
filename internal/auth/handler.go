package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *authz.Sessions
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *authz.Sessions) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, sessions: sessions, validator: validator.New()}
}

// MountRoutes registers auth routes. Login carries its own tight rate
// limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).
		Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type sessionView struct {
	User        authz.Actor `json:"user"`
	AccessToken string      `json:"access_token"`
	Roles       []string    `json:"roles"`
	Permissions []string    `json:"permissions"`
	Modules     []string    `json:"modules"`
}

func viewOf(snap *authz.Snapshot) sessionView {
	return sessionView{
		User:        snap.Actor(),
		AccessToken: snap.AccessToken(),
		Roles:       snap.Roles(),
		Permissions: snap.Permissions(),
		Modules:     snap.Modules(),
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := shared.DecodeJSON(r, &form); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}

	snap, err := h.service.Login(r.Context(), form.Email, form.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		shared.RespondServiceError(w, h.logger, err)
		return
	}

	store := authz.NewStore(h.sessions.Persister(snap.AccessToken()), h.logger)
	store.SetAuth(r.Context(), snap)

	h.logger.Info("login", slog.Int64("user_id", snap.Actor().ID))
	shared.RespondJSON(w, http.StatusOK, viewOf(snap))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := authz.SessionIDFromContext(r.Context())
	if sessionID == "" {
		shared.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		h.logger.Warn("remove session row", slog.Any("error", err))
	}
	store := authz.NewStore(h.sessions.Persister(sessionID), h.logger)
	store.ClearAuth(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	snap := authz.SnapshotFromContext(r.Context())
	if snap == nil {
		shared.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	shared.RespondJSON(w, http.StatusOK, viewOf(snap))
}
