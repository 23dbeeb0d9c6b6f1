package queue

import (
	"context"
	"fmt"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// NotifyQueue dispatches notification IDs to one of three buffered channels
// based on priority.
//
// Buffer sizes reflect expected traffic ratios:
//
//	High:   1 000  — unfixed issues; must never accumulate
//	Normal: 5 000  — auto-fixed issues, the bulk of traffic
//	Low:    2 000  — scheduled report notifications
//
// Workers dequeue via the double-select pattern, which guarantees that
// high-priority notifications are always served before normal or low ones,
// while still allowing fair competition between normal and low when high
// is empty.
type NotifyQueue struct {
	high   chan NotifyTask
	normal chan NotifyTask
	low    chan NotifyTask
}

func NewNotifyQueue() *NotifyQueue {
	return &NotifyQueue{
		high:   make(chan NotifyTask, 1000),
		normal: make(chan NotifyTask, 5000),
		low:    make(chan NotifyTask, 2000),
	}
}

// Enqueue places a task on the appropriate priority channel.
// It is non-blocking: if the target channel is full, ErrQueueFull is
// returned immediately rather than blocking the caller.
func (q *NotifyQueue) Enqueue(task NotifyTask) error {
	switch task.Priority {
	case domain.PriorityHigh:
		select {
		case q.high <- task:
			return nil
		default:
			return domain.ErrQueueFull
		}
	case domain.PriorityNormal:
		select {
		case q.normal <- task:
			return nil
		default:
			return domain.ErrQueueFull
		}
	case domain.PriorityLow:
		select {
		case q.low <- task:
			return nil
		default:
			return domain.ErrQueueFull
		}
	default:
		return fmt.Errorf("unknown priority %q", task.Priority)
	}
}

// Dequeue blocks until a task is available or ctx is cancelled.
//
// Priority guarantee — the double-select pattern:
//  1. A non-blocking select checks the high channel first. If a task is
//     waiting there, it is returned immediately regardless of normal/low.
//  2. Only when high is empty does the goroutine enter a fair blocking
//     select across all three channels plus the done signal.
//
// Returns (NotifyTask{}, false) when ctx is cancelled (graceful shutdown).
func (q *NotifyQueue) Dequeue(ctx context.Context) (NotifyTask, bool) {
	// Step 1: drain high before entering a fair wait.
	select {
	case task := <-q.high:
		return task, true
	default:
	}

	// Step 2: fair competition when high is empty.
	select {
	case task := <-q.high:
		return task, true
	case task := <-q.normal:
		return task, true
	case task := <-q.low:
		return task, true
	case <-ctx.Done():
		return NotifyTask{}, false
	}
}

// Depths returns the current number of tasks waiting in each priority tier.
// Used by the metrics handler for the queue-depth snapshot.
func (q *NotifyQueue) Depths() (high, normal, low int) {
	return len(q.high), len(q.normal), len(q.low)
}
