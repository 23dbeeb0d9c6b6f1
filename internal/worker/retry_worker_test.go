package worker_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/worker"
)

func storeNotification(t *testing.T, repo *repository.MockNotificationRepository, n *domain.Notification) {
	t.Helper()
	if n.MaxRetries == 0 {
		n.MaxRetries = 3
	}
	if err := repo.Create(context.Background(), n); err != nil {
		t.Fatal(err)
	}
}

// runRetryWorkerUntil polls the worker until the notification reaches the
// wanted status or the deadline passes.
func runRetryWorkerUntil(t *testing.T, rw *worker.RetryWorker, repo *repository.MockNotificationRepository, id string, want domain.Status) *domain.Notification {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rw.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, ok := repo.Stored(id); ok && n.Status == want {
			cancel()
			<-done
			return n
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	t.Fatalf("notification %s never reached %s", id, want)
	return nil
}

func TestRetryWorker_ReenqueuesDueRetry(t *testing.T) {
	repo := repository.NewMockNotificationRepository()
	q := queue.NewNotifyQueue()
	now := time.Now().UTC()

	past := now.Add(-time.Second)
	future := now.Add(time.Hour)
	storeNotification(t, repo, &domain.Notification{
		ID: "due", JobID: "job_due", CheckName: "SCFWithdrawn",
		Status: domain.StatusFailed, Priority: domain.PriorityHigh,
		RetryCount: 1, NextRetryAt: &past, CreatedAt: now,
	})
	storeNotification(t, repo, &domain.Notification{
		ID: "not-yet", JobID: "job_not_yet", CheckName: "SCFWithdrawn",
		Status: domain.StatusFailed, Priority: domain.PriorityHigh,
		RetryCount: 1, NextRetryAt: &future, CreatedAt: now,
	})
	storeNotification(t, repo, &domain.Notification{
		ID: "exhausted", JobID: "job_exhausted", CheckName: "SCFWithdrawn",
		Status: domain.StatusFailed, Priority: domain.PriorityHigh,
		RetryCount: 3, MaxRetries: 3, NextRetryAt: &past, CreatedAt: now,
	})

	rw := worker.NewRetryWorker(repo, q, 5*time.Millisecond, zap.NewNop())
	runRetryWorkerUntil(t, rw, repo, "due", domain.StatusQueued)

	dequeueCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	task, ok := q.Dequeue(dequeueCtx)
	if !ok {
		t.Fatal("expected a re-enqueued task")
	}
	if task.NotificationID != "due" || task.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task: %+v", task)
	}

	if n, _ := repo.Stored("not-yet"); n.Status != domain.StatusFailed {
		t.Fatalf("a retry that is not due yet must stay failed, got %s", n.Status)
	}
	if n, _ := repo.Stored("exhausted"); n.Status != domain.StatusFailed {
		t.Fatalf("an exhausted retry must stay failed, got %s", n.Status)
	}
}

func TestRetryWorker_SweepsStalePending(t *testing.T) {
	repo := repository.NewMockNotificationRepository()
	q := queue.NewNotifyQueue()
	now := time.Now().UTC()

	// Left pending because the notify queue was full at creation time.
	storeNotification(t, repo, &domain.Notification{
		ID: "stranded", JobID: "job_stranded", CheckName: "ScfNoX",
		Status: domain.StatusPending, Priority: domain.PriorityNormal,
		CreatedAt: now.Add(-time.Minute),
	})
	// Fresh pending rows are in the middle of their create-then-enqueue
	// sequence and must not be picked up.
	storeNotification(t, repo, &domain.Notification{
		ID: "fresh", JobID: "job_fresh", CheckName: "ScfNoX",
		Status: domain.StatusPending, Priority: domain.PriorityNormal,
		CreatedAt: now,
	})

	rw := worker.NewRetryWorker(repo, q, 5*time.Millisecond, zap.NewNop())
	runRetryWorkerUntil(t, rw, repo, "stranded", domain.StatusQueued)

	dequeueCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	task, ok := q.Dequeue(dequeueCtx)
	if !ok {
		t.Fatal("expected the stranded notification on the queue")
	}
	if task.NotificationID != "stranded" {
		t.Fatalf("unexpected task: %+v", task)
	}

	if n, _ := repo.Stored("fresh"); n.Status != domain.StatusPending {
		t.Fatalf("fresh pending row must be left alone, got %s", n.Status)
	}
}
