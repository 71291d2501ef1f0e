package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/aurora-hris/aurora-hris/internal/authz"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

func newSessions(t *testing.T) (*authz.Sessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return authz.NewSessions(client, time.Hour), mr
}

func TestStoreSetAndClear(t *testing.T) {
	sessions, mr := newSessions(t)
	ctx := context.Background()

	store := authz.NewStore(sessions.Persister("sid-1"), nil)
	if store.IsAuthenticated() {
		t.Fatalf("fresh store must be unauthenticated")
	}

	store.SetAuth(ctx, staffSnapshot())
	if !store.IsAuthenticated() {
		t.Fatalf("expected authenticated after SetAuth")
	}
	if !store.HasPermission("employee:read") {
		t.Fatalf("expected predicate delegation through store")
	}
	if !mr.Exists("authz:token:sid-1") {
		t.Fatalf("token key must be persisted on SetAuth")
	}

	store.ClearAuth(ctx)
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated after ClearAuth")
	}
	if store.HasPermission("employee:read") || store.HasModuleAccess("leave-management") {
		t.Fatalf("predicates must fail closed after ClearAuth")
	}
	if mr.Exists("authz:token:sid-1") || mr.Exists("authz:snapshot:sid-1") {
		t.Fatalf("persisted keys must be erased on ClearAuth")
	}

	// Idempotent: clearing again must not fail or resurrect state.
	store.ClearAuth(ctx)
	if store.IsAuthenticated() {
		t.Fatalf("repeated ClearAuth must stay cleared")
	}
}

func TestStoreRehydrate(t *testing.T) {
	sessions, _ := newSessions(t)
	ctx := context.Background()

	first := authz.NewStore(sessions.Persister("sid-2"), nil)
	first.SetAuth(ctx, staffSnapshot())

	// Fresh process image over the same persisted state.
	second := authz.NewStore(sessions.Persister("sid-2"), nil)
	second.Load(ctx)
	if !second.IsAuthenticated() {
		t.Fatalf("expected rehydrated snapshot")
	}
	if !second.HasPermission("leave:read") || second.HasPermission("payroll:read") {
		t.Fatalf("rehydrated predicates must match the original")
	}
	if !second.HasModuleAccess("leave-management") || second.HasModuleAccess("payroll-management") {
		t.Fatalf("rehydrated module access must match the original")
	}
}

func TestStoreCorruptPersistedSnapshot(t *testing.T) {
	sessions, mr := newSessions(t)
	mr.Set("authz:snapshot:sid-3", "{not json")

	store := authz.NewStore(sessions.Persister("sid-3"), nil)
	store.Load(context.Background())
	if store.IsAuthenticated() {
		t.Fatalf("corrupt persisted snapshot must be treated as no actor")
	}
}

func TestSessionsTokenIndependent(t *testing.T) {
	sessions, _ := newSessions(t)
	ctx := context.Background()
	if err := sessions.Save(ctx, "sid-4", staffSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err := sessions.Token(ctx, "sid-4")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if token != "token-7" {
		t.Fatalf("expected token readable without snapshot decode, got %q", token)
	}
}

func TestSessionsPurgeUser(t *testing.T) {
	sessions, mr := newSessions(t)
	ctx := context.Background()
	if err := sessions.Save(ctx, "sid-a", staffSnapshot()); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := sessions.Save(ctx, "sid-b", staffSnapshot()); err != nil {
		t.Fatalf("save b: %v", err)
	}

	purged, err := sessions.PurgeUser(ctx, 7)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 2 {
		t.Fatalf("expected 2 sessions purged, got %d", purged)
	}
	if mr.Exists("authz:snapshot:sid-a") || mr.Exists("authz:snapshot:sid-b") {
		t.Fatalf("purged snapshots must be gone")
	}

	snap, err := sessions.Load(ctx, "sid-a")
	if err != nil || snap != nil {
		t.Fatalf("expected clean miss after purge, got snap=%v err=%v", snap, err)
	}
}
