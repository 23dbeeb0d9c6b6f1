package repository

import (
	"context"
	"sync"
	"time"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// MockNotificationRepository is an in-memory NotificationRepository for
// unit tests. Error fields, when set, override the corresponding method.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification

	CreateErr   error
	GetByIDErr  error
	MarkSentErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{notifications: make(map[string]*domain.Notification)}
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.notifications[n.ID] = &clone
	return nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if f.Status != nil && n.Status != *f.Status {
			continue
		}
		if f.CheckID != nil && n.CheckID != *f.CheckID {
			continue
		}
		clone := *n
		result = append(result, &clone)
	}
	return result, len(result), nil
}

func (m *MockNotificationRepository) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = status
	return nil
}

func (m *MockNotificationRepository) MarkSent(_ context.Context, id, emailBlob string, sentAt time.Time) error {
	if m.MarkSentErr != nil {
		return m.MarkSentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = domain.StatusSent
	if emailBlob != "" {
		n.EmailBlob = &emailBlob
	}
	n.SentAt = &sentAt
	n.ErrorMessage = nil
	return nil
}

func (m *MockNotificationRepository) MarkFailed(_ context.Context, id, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = domain.StatusFailed
	n.ErrorMessage = &errMsg
	n.NextRetryAt = nil
	return nil
}

func (m *MockNotificationRepository) MarkSkipped(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = domain.StatusSkipped
	n.ErrorMessage = &reason
	return nil
}

func (m *MockNotificationRepository) ScheduleRetry(_ context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = domain.StatusFailed
	n.RetryCount = retryCount
	n.NextRetryAt = &nextRetry
	n.ErrorMessage = &errMsg
	return nil
}

func (m *MockNotificationRepository) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Status = domain.StatusCancelled
	return nil
}

func (m *MockNotificationRepository) FindDueRetries(_ context.Context) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	var result []*domain.Notification
	for _, n := range m.notifications {
		dueRetry := n.Status == domain.StatusFailed &&
			n.RetryCount < n.MaxRetries &&
			n.NextRetryAt != nil && !n.NextRetryAt.After(now)
		stalePending := n.Status == domain.StatusPending &&
			n.CreatedAt.Before(now.Add(-30*time.Second))
		if !dueRetry && !stalePending {
			continue
		}
		clone := *n
		result = append(result, &clone)
	}
	return result, nil
}

// Stored returns a snapshot of a stored notification without copying
// through the interface, for assertions.
func (m *MockNotificationRepository) Stored(id string) (*domain.Notification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, false
	}
	clone := *n
	return &clone, true
}

// All returns every stored notification.
func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		clone := *n
		result = append(result, &clone)
	}
	return result
}

var _ NotificationRepository = (*MockNotificationRepository)(nil)
