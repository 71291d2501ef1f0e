package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	tokenKeyPrefix    = "authz:token:"
	snapshotKeyPrefix = "authz:snapshot:"
	userIndexPrefix   = "authz:user:"
)

// Sessions manages persisted snapshots in Redis, keyed by session ID.
// Two keys per session: the bearer token on its own (so the HTTP layer can
// read it without decoding the snapshot) and the snapshot JSON. A per-user
// index set supports revoking every session of a user at once.
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessions constructs the Redis-backed session registry.
func NewSessions(client *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{client: client, ttl: ttl}
}

// Persister returns a Persister bound to a single session ID, suitable
// for wiring into a Store.
func (r *Sessions) Persister(sessionID string) Persister {
	return &sessionPersister{sessions: r, sessionID: sessionID}
}

// Save writes the snapshot and its token under the session's keys and
// records the session in the user index.
func (r *Sessions) Save(ctx context.Context, sessionID string, snap *Snapshot) error {
	if snap == nil {
		return r.Clear(ctx, sessionID)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("authz: marshal snapshot: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKeyPrefix+sessionID, snap.AccessToken(), r.ttl)
	pipe.Set(ctx, snapshotKeyPrefix+sessionID, data, r.ttl)
	pipe.SAdd(ctx, r.userIndexKey(snap.Actor().ID), sessionID)
	pipe.Expire(ctx, r.userIndexKey(snap.Actor().ID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("authz: persist snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for a session. A missing key yields (nil, nil);
// a corrupt payload is reported as an error so the caller can fail closed.
func (r *Sessions) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("authz: load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("authz: decode snapshot: %w", err)
	}
	return &snap, nil
}

// Token reads the bearer token for a session without touching the
// snapshot. Missing sessions yield an empty token.
func (r *Sessions) Token(ctx context.Context, sessionID string) (string, error) {
	token, err := r.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("authz: load token: %w", err)
	}
	return token, nil
}

// Clear deletes both keys for a session. Deleting an absent session is
// not an error.
func (r *Sessions) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, tokenKeyPrefix+sessionID, snapshotKeyPrefix+sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("authz: clear session: %w", err)
	}
	return nil
}

// PurgeUser deletes every persisted snapshot belonging to a user. Role or
// permission changes call this so stale snapshots disappear and the next
// login re-derives access from the role graph.
func (r *Sessions) PurgeUser(ctx context.Context, userID int64) (int, error) {
	indexKey := r.userIndexKey(userID)
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("authz: list user sessions: %w", err)
	}
	for _, id := range ids {
		if err := r.Clear(ctx, id); err != nil {
			return 0, err
		}
	}
	if err := r.client.Del(ctx, indexKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("authz: drop user index: %w", err)
	}
	return len(ids), nil
}

// TTL exposes the configured session lifetime.
func (r *Sessions) TTL() time.Duration {
	return r.ttl
}

func (r *Sessions) userIndexKey(userID int64) string {
	return userIndexPrefix + strconv.FormatInt(userID, 10) + ":sessions"
}

type sessionPersister struct {
	sessions  *Sessions
	sessionID string
}

func (p *sessionPersister) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	return p.sessions.Save(ctx, p.sessionID, snap)
}

func (p *sessionPersister) ClearSnapshot(ctx context.Context) error {
	return p.sessions.Clear(ctx, p.sessionID)
}

func (p *sessionPersister) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	return p.sessions.Load(ctx, p.sessionID)
}

var _ Persister = (*sessionPersister)(nil)
