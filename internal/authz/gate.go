package authz

import (
	"log/slog"
	"net/http"
	"strings"
)

// DecisionRecorder receives the outcome of every gate evaluation.
// Implemented by the observability metrics; nil disables recording.
type DecisionRecorder interface {
	RecordDecision(outcome string)
}

// Gate wraps protected handlers with evaluator verdicts. Decisions are
// recomputed on every request from the context snapshot; nothing is
// cached across snapshot changes.
type Gate struct {
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Wrap guards protected with the required permissions. With requireAll
// the universal check applies, otherwise the existential one. An empty
// requirement list means no restriction was requested and always allows.
// A nil fallback produces an empty 403 (or 401 when no actor is loaded).
func (g Gate) Wrap(required []string, requireAll bool, protected, fallback http.Handler) http.Handler {
	normalized := normalizePermissions(required)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(normalized) == 0 {
			protected.ServeHTTP(w, r)
			return
		}
		snap := SnapshotFromContext(r.Context())
		allowed := false
		if requireAll {
			allowed = snap.HasAllPermissions(normalized)
		} else {
			allowed = snap.HasAnyPermission(normalized)
		}
		if allowed {
			g.record("allow")
			protected.ServeHTTP(w, r)
			return
		}
		g.record("deny")
		if fallback != nil {
			fallback.ServeHTTP(w, r)
			return
		}
		g.deny(w, r, snap, normalized)
	})
}

// RequireAny allows the request when at least one permission is granted.
func (g Gate) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Wrap(perms, false, next, nil)
	}
}

// RequireAll allows the request only when every permission is granted.
func (g Gate) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Wrap(perms, true, next, nil)
	}
}

// RequireModule allows the request when the actor may enter the module.
// The super-admin and zero-grant bypass applies here, never to the
// permission middlewares above.
func (g Gate) RequireModule(moduleSlug string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			if snap.HasModuleAccess(moduleSlug) {
				g.record("allow")
				next.ServeHTTP(w, r)
				return
			}
			g.record("deny")
			g.deny(w, r, snap, []string{moduleSlug})
		})
	}
}

func (g Gate) deny(w http.ResponseWriter, r *http.Request, snap *Snapshot, required []string) {
	if snap == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if g.Logger != nil {
		g.Logger.Warn("access denied",
			slog.Int64("user_id", snap.Actor().ID),
			slog.String("path", r.URL.Path),
			slog.String("required", strings.Join(required, ",")))
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}

func (g Gate) record(outcome string) {
	if g.Recorder != nil {
		g.Recorder.RecordDecision(outcome)
	}
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = normalizeSlug(p)
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}
