package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/aurora-hris/aurora-hris/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSnapshotPurge drops every persisted session snapshot for the
	// listed users so their next request rebuilds access from the database.
	TaskSnapshotPurge = "authz:snapshot_purge"
	// TaskSessionSweep removes expired session audit rows.
	TaskSessionSweep = "auth:session_sweep"
)

// SnapshotPurgePayload lists the users whose snapshots must be dropped.
type SnapshotPurgePayload struct {
	UserIDs []int64 `json:"user_ids"`
}

// NewSnapshotPurgeTask constructs the purge task.
func NewSnapshotPurgeTask(payload SnapshotPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotPurge, data), nil
}

// NewSessionSweepTask constructs the sweep task. The payload is empty; the
// handler works off the sessions table directly.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}

// SnapshotPurger drops persisted snapshots for one user across all sessions.
type SnapshotPurger interface {
	PurgeUser(ctx context.Context, userID int64) (int, error)
}

// SessionSweeper deletes expired session rows.
type SessionSweeper interface {
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// SnapshotPurgeHandler returns the handler for TaskSnapshotPurge.
func SnapshotPurgeHandler(purger SnapshotPurger, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("snapshot_purge")
		var payload SnapshotPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		total := 0
		for _, userID := range payload.UserIDs {
			n, err := purger.PurgeUser(ctx, userID)
			if err != nil {
				logger.Error("purge snapshots", slog.Int64("user_id", userID), slog.Any("error", err))
				return tracker.End(err)
			}
			total += n
		}
		logger.Info("snapshots purged", slog.Int("users", len(payload.UserIDs)), slog.Int("sessions", total))
		return tracker.End(nil)
	}
}

// SessionSweepHandler returns the handler for TaskSessionSweep.
func SessionSweepHandler(sweeper SessionSweeper, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("session_sweep")
		deleted, err := sweeper.DeleteExpiredSessions(ctx, time.Now())
		if err != nil {
			logger.Error("session sweep", slog.Any("error", err))
			return tracker.End(err)
		}
		if deleted > 0 {
			logger.Info("expired sessions removed", slog.Int64("count", deleted))
		}
		return tracker.End(nil)
	}
}
