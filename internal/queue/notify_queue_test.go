package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
)

func task(id string, p domain.Priority) queue.NotifyTask {
	return queue.NotifyTask{NotificationID: id, Priority: p}
}

func TestNotifyQueue_BasicEnqueueDequeue(t *testing.T) {
	q := queue.NewNotifyQueue()
	ctx := context.Background()

	if err := q.Enqueue(task("1", domain.PriorityNormal)); err != nil {
		t.Fatal(err)
	}

	got, ok := q.Dequeue(ctx)
	if !ok {
		t.Fatal("expected task, got nothing")
	}
	if got.NotificationID != "1" {
		t.Fatalf("expected id=1, got %s", got.NotificationID)
	}
}

// TestNotifyQueue_HighBeforeNormal verifies that a high-priority task
// inserted after a normal-priority task is still served first.
func TestNotifyQueue_HighBeforeNormal(t *testing.T) {
	q := queue.NewNotifyQueue()
	ctx := context.Background()

	_ = q.Enqueue(task("normal", domain.PriorityNormal))
	_ = q.Enqueue(task("high", domain.PriorityHigh))

	first, _ := q.Dequeue(ctx)
	if first.NotificationID != "high" {
		t.Fatalf("expected high to be dequeued first, got %q", first.NotificationID)
	}
}

func TestNotifyQueue_UnknownPriority(t *testing.T) {
	q := queue.NewNotifyQueue()
	if err := q.Enqueue(task("x", domain.Priority("bogus"))); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

// TestNotifyQueue_ContextCancellation verifies Dequeue returns (_, false)
// when the context is cancelled while blocking.
func TestNotifyQueue_ContextCancellation(t *testing.T) {
	q := queue.NewNotifyQueue()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}

func TestNotifyQueue_Depths(t *testing.T) {
	q := queue.NewNotifyQueue()
	_ = q.Enqueue(task("1", domain.PriorityHigh))
	_ = q.Enqueue(task("2", domain.PriorityLow))
	_ = q.Enqueue(task("3", domain.PriorityLow))

	high, normal, low := q.Depths()
	if high != 1 || normal != 0 || low != 2 {
		t.Fatalf("unexpected depths: high=%d normal=%d low=%d", high, normal, low)
	}
}

func TestItemQueue_FullReturnsErrQueueFull(t *testing.T) {
	q := queue.NewItemQueue()
	it := &domain.Item{}
	for {
		if err := q.Enqueue(queue.ItemTask{EventID: "e", Item: it}); err != nil {
			if !errors.Is(err, domain.ErrQueueFull) {
				t.Fatalf("expected ErrQueueFull, got %v", err)
			}
			return
		}
	}
}

func TestItemQueue_DequeueReturnsEnqueuedTask(t *testing.T) {
	q := queue.NewItemQueue()
	it := &domain.Item{}
	it.ItemData.Barcode = "123"

	if err := q.Enqueue(queue.ItemTask{EventID: "ev-1", Item: it}); err != nil {
		t.Fatal(err)
	}
	got, ok := q.Dequeue(context.Background())
	if !ok || got.EventID != "ev-1" || got.Item.ItemData.Barcode != "123" {
		t.Fatalf("unexpected task: %+v ok=%v", got, ok)
	}
}
