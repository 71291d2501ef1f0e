package authz

import "context"

type snapshotContextKey struct{}

type sessionIDContextKey struct{}

// ContextWithSnapshot stores the request's snapshot in context.
func ContextWithSnapshot(ctx context.Context, snap *Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// SnapshotFromContext extracts the snapshot from context. Returns nil when
// no actor is loaded; predicates on a nil snapshot fail closed.
func SnapshotFromContext(ctx context.Context) *Snapshot {
	snap, _ := ctx.Value(snapshotContextKey{}).(*Snapshot)
	return snap
}

// ContextWithSessionID stores the session identifier in context.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey{}, id)
}

// SessionIDFromContext extracts the session identifier from context.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey{}).(string)
	return id
}
