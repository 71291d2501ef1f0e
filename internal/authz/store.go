package authz

import (
	"context"
	"log/slog"
	"sync"
)

// Persister keeps a durable copy of the snapshot outside process memory,
// so authorization state survives restarts. Implementations must store the
// access token independently of the snapshot body (outbound HTTP needs the
// token without parsing the rest).
type Persister interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	ClearSnapshot(ctx context.Context) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// Store is the single source of truth for the current actor. It is
// constructor-injected wherever authorization state is needed; there is no
// package-level instance. Reads and writes go through one RWMutex so a
// reader never observes a half-replaced snapshot.
type Store struct {
	mu        sync.RWMutex
	snapshot  *Snapshot
	persister Persister
	logger    *slog.Logger
}

// NewStore constructs a Store. The persister may be nil, in which case
// state lives only in memory.
func NewStore(persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{persister: persister, logger: logger}
}

// Load rehydrates the snapshot from the persister. A missing or corrupt
// persisted copy leaves the store unauthenticated; it is never an error
// surfaced to the caller.
func (st *Store) Load(ctx context.Context) {
	if st.persister == nil {
		return
	}
	snap, err := st.persister.LoadSnapshot(ctx)
	if err != nil {
		st.logger.Warn("discarding persisted snapshot", slog.Any("error", err))
		snap = nil
	}
	st.mu.Lock()
	st.snapshot = snap
	st.mu.Unlock()
}

// SetAuth replaces the snapshot wholesale and persists it. The caller is
// trusted to have produced a correct snapshot; no validation happens here.
// Persistence failures are logged, not returned: the in-memory state is
// authoritative for the rest of the process lifetime.
func (st *Store) SetAuth(ctx context.Context, snap *Snapshot) {
	st.mu.Lock()
	st.snapshot = snap
	st.mu.Unlock()

	if snap != nil && !snap.HasRole(SuperAdminRole) && len(snap.modules) == 0 {
		st.logger.Warn("actor has no module grants; module checks fail open",
			slog.Int64("user_id", snap.actor.ID))
	}
	if st.persister != nil {
		if err := st.persister.SaveSnapshot(ctx, snap); err != nil {
			st.logger.Error("persist snapshot", slog.Any("error", err))
		}
	}
}

// ClearAuth drops the snapshot and erases the persisted copy. Calling it
// on an already-cleared store is a no-op.
func (st *Store) ClearAuth(ctx context.Context) {
	st.mu.Lock()
	st.snapshot = nil
	st.mu.Unlock()

	if st.persister != nil {
		if err := st.persister.ClearSnapshot(ctx); err != nil {
			st.logger.Error("clear persisted snapshot", slog.Any("error", err))
		}
	}
}

// Current returns the snapshot, or nil when unauthenticated. The returned
// snapshot is immutable; predicates on it stay consistent even if the
// store is replaced concurrently.
func (st *Store) Current() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot
}

// IsAuthenticated reports whether an actor is loaded.
func (st *Store) IsAuthenticated() bool {
	return st.Current() != nil
}

// HasPermission delegates to the current snapshot, failing closed.
func (st *Store) HasPermission(slug string) bool {
	return st.Current().HasPermission(slug)
}

// HasAnyPermission delegates to the current snapshot, failing closed.
func (st *Store) HasAnyPermission(slugs []string) bool {
	return st.Current().HasAnyPermission(slugs)
}

// HasAllPermissions delegates to the current snapshot, failing closed.
func (st *Store) HasAllPermissions(slugs []string) bool {
	return st.Current().HasAllPermissions(slugs)
}

// HasModuleAccess delegates to the current snapshot, failing closed.
func (st *Store) HasModuleAccess(moduleSlug string) bool {
	return st.Current().HasModuleAccess(moduleSlug)
}
