package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/service"
)

func testCheck() *domain.Check {
	return &domain.Check{ID: 7, Name: "ScfNoX", EmailSubject: "No X", EmailBody: "Fixed barcodes:"}
}

func testItem() *domain.Item {
	it := &domain.Item{}
	it.BibData.Title = "Annals of the Former World"
	it.ItemData.Barcode = "31234567X"
	return it
}

func newService() (*service.NotificationService, *repository.MockNotificationRepository, *queue.NotifyQueue) {
	repo := repository.NewMockNotificationRepository()
	q := queue.NewNotifyQueue()
	return service.NewNotificationService(repo, q, zap.NewNop()), repo, q
}

func TestRecordIssue_PersistsAndEnqueues(t *testing.T) {
	svc, repo, q := newService()
	ctx := context.Background()

	n, err := svc.RecordIssue(ctx, testCheck(), testItem(), domain.OutcomeFlagged, "<table></table>")
	if err != nil {
		t.Fatal(err)
	}

	if n.Priority != domain.PriorityHigh {
		t.Fatalf("flagged issues should be high priority, got %s", n.Priority)
	}
	if n.Status != domain.StatusQueued {
		t.Fatalf("expected queued status, got %s", n.Status)
	}
	if n.Barcode == nil || *n.Barcode != "31234567X" {
		t.Fatalf("expected barcode on notification, got %v", n.Barcode)
	}
	if !strings.HasPrefix(n.JobID, "job_ScfNoX_") {
		t.Fatalf("unexpected job id format: %s", n.JobID)
	}

	stored, ok := repo.Stored(n.ID)
	if !ok || stored.Status != domain.StatusQueued {
		t.Fatalf("expected stored queued notification, got %+v", stored)
	}

	task, ok := q.Dequeue(ctx)
	if !ok || task.NotificationID != n.ID || task.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected queued task: %+v", task)
	}
}

func TestRecordIssue_FixedIsNormalPriority(t *testing.T) {
	svc, _, q := newService()

	n, err := svc.RecordIssue(context.Background(), testCheck(), testItem(), domain.OutcomeFixed, "x")
	if err != nil {
		t.Fatal(err)
	}
	if n.Priority != domain.PriorityNormal {
		t.Fatalf("fixed issues should be normal priority, got %s", n.Priority)
	}
	if task, _ := q.Dequeue(context.Background()); task.Priority != domain.PriorityNormal {
		t.Fatalf("task should ride the normal tier, got %s", task.Priority)
	}
}

func TestRecordReport_ReferencesBlobAndRidesLowTier(t *testing.T) {
	svc, repo, q := newService()

	n, err := svc.RecordReport(context.Background(), testCheck(), "job_ScfDuplicates_20260829_ab12cd34",
		"item-check-reports", "job_ScfDuplicates_20260829_ab12cd34.json")
	if err != nil {
		t.Fatal(err)
	}

	if n.Priority != domain.PriorityLow || n.Outcome != domain.OutcomeReport {
		t.Fatalf("unexpected report notification: %+v", n)
	}
	if n.ReportBlob == nil || *n.ReportBlob != "job_ScfDuplicates_20260829_ab12cd34.json" {
		t.Fatalf("expected report blob reference, got %v", n.ReportBlob)
	}
	if n.JobID != "job_ScfDuplicates_20260829_ab12cd34" {
		t.Fatalf("caller-supplied job id should be kept, got %s", n.JobID)
	}

	if _, ok := repo.Stored(n.ID); !ok {
		t.Fatal("notification not persisted")
	}
	if task, _ := q.Dequeue(context.Background()); task.Priority != domain.PriorityLow {
		t.Fatalf("report should ride the low tier, got %s", task.Priority)
	}
}

func TestRecordIssue_CreateErrorPropagates(t *testing.T) {
	svc, repo, _ := newService()
	repo.CreateErr = errors.New("db down")

	if _, err := svc.RecordIssue(context.Background(), testCheck(), testItem(), domain.OutcomeFlagged, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestCancel_StateMachine(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	n, err := svc.RecordIssue(ctx, testCheck(), testItem(), domain.OutcomeFlagged, "x")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Cancel(ctx, n.ID); err != nil {
		t.Fatalf("cancel of queued notification should succeed, got %v", err)
	}
	if err := svc.Cancel(ctx, n.ID); !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
	}

	sent, _ := svc.RecordIssue(ctx, testCheck(), testItem(), domain.OutcomeFixed, "x")
	_ = repo.MarkSent(ctx, sent.ID, "blob.json", time.Now())
	if err := svc.Cancel(ctx, sent.ID); !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable for sent, got %v", err)
	}

	processing, _ := svc.RecordIssue(ctx, testCheck(), testItem(), domain.OutcomeFixed, "x")
	_ = repo.UpdateStatus(ctx, processing.ID, domain.StatusProcessing)
	if err := svc.Cancel(ctx, processing.ID); !errors.Is(err, domain.ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable for processing, got %v", err)
	}

	if err := svc.Cancel(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_ClampsPagination(t *testing.T) {
	svc, _, _ := newService()

	_, _, err := svc.List(context.Background(), domain.ListFilter{Page: -1, Limit: 10_000})
	if err != nil {
		t.Fatal(err)
	}
}
