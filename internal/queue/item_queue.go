package queue

import (
	"context"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// ItemQueue buffers webhook events between the HTTP receiver and the check
// workers. A single tier is enough here: every item-update event is equal
// until a check classifies it.
//
// The buffer of 2 000 events absorbs Alma's webhook bursts (bulk jobs fire
// one event per touched item) while still bounding memory; beyond that the
// receiver returns 503 and Alma redelivers.
type ItemQueue struct {
	tasks chan ItemTask
}

func NewItemQueue() *ItemQueue {
	return &ItemQueue{tasks: make(chan ItemTask, 2000)}
}

// Enqueue is non-blocking: if the buffer is full, ErrQueueFull is returned
// immediately rather than blocking the webhook handler.
func (q *ItemQueue) Enqueue(task ItemTask) error {
	select {
	case q.tasks <- task:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until a task is available or ctx is cancelled.
// Returns (ItemTask{}, false) when ctx is cancelled (graceful shutdown).
func (q *ItemQueue) Dequeue(ctx context.Context) (ItemTask, bool) {
	select {
	case task := <-q.tasks:
		return task, true
	case <-ctx.Done():
		return ItemTask{}, false
	}
}

// Depth returns the number of events waiting for the check engine.
func (q *ItemQueue) Depth() int {
	return len(q.tasks)
}
