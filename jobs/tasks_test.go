package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/aurora-hris/aurora-hris/internal/jobs"
	"github.com/aurora-hris/aurora-hris/jobs"
	_ "github.com/aurora-hris/aurora-hris/testing"
)

type stubPurger struct {
	purged []int64
}

func (s *stubPurger) PurgeUser(ctx context.Context, userID int64) (int, error) {
	s.purged = append(s.purged, userID)
	return 2, nil
}

type stubSweeper struct {
	deleted int64
	called  bool
}

func (s *stubSweeper) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	s.called = true
	return s.deleted, nil
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestSnapshotPurgeHandler(t *testing.T) {
	purger := &stubPurger{}
	handler := jobs.SnapshotPurgeHandler(purger, testMetrics(), slog.Default())

	task, err := jobs.NewSnapshotPurgeTask(jobs.SnapshotPurgePayload{UserIDs: []int64{7, 9}})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(purger.purged) != 2 || purger.purged[0] != 7 || purger.purged[1] != 9 {
		t.Fatalf("unexpected purge calls: %v", purger.purged)
	}
}

func TestSnapshotPurgeHandlerSkipsCorruptPayload(t *testing.T) {
	purger := &stubPurger{}
	handler := jobs.SnapshotPurgeHandler(purger, testMetrics(), slog.Default())

	task := asynq.NewTask(jobs.TaskSnapshotPurge, []byte("{not json"))
	if err := handler(context.Background(), task); err != asynq.SkipRetry {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(purger.purged) != 0 {
		t.Fatalf("corrupt payload must not purge anything")
	}
}

func TestSessionSweepHandler(t *testing.T) {
	sweeper := &stubSweeper{deleted: 3}
	handler := jobs.SessionSweepHandler(sweeper, testMetrics(), slog.Default())

	if err := handler(context.Background(), jobs.NewSessionSweepTask()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !sweeper.called {
		t.Fatalf("expected sweeper to run")
	}
}
