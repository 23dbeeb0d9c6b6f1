package repository

import (
	"context"
	"sync"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// MockUserRepository is an in-memory UserRepository for unit tests.
type MockUserRepository struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	subs       map[int64]*domain.Subscription
	nextUserID int64
	nextSubID  int64

	RecipientsErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:      make(map[int64]*domain.User),
		subs:       make(map[int64]*domain.Subscription),
		nextUserID: 1,
		nextSubID:  1,
	}
}

func (m *MockUserRepository) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	u.ID = m.nextUserID
	m.nextUserID++
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *MockUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepository) List(_ context.Context, _, _ int) ([]*domain.User, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		result = append(result, &clone)
	}
	return result, len(result), nil
}

func (m *MockUserRepository) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *u
	m.users[u.ID] = &clone
	return nil
}

func (m *MockUserRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	for sid, s := range m.subs {
		if s.UserID == id {
			delete(m.subs, sid)
		}
	}
	return nil
}

func (m *MockUserRepository) Subscribe(_ context.Context, userID, checkID int64) (*domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, s := range m.subs {
		if s.UserID == userID && s.CheckID == checkID {
			return nil, domain.ErrSubscriptionExists
		}
	}
	sub := &domain.Subscription{ID: m.nextSubID, UserID: userID, CheckID: checkID}
	m.nextSubID++
	m.subs[sub.ID] = sub
	clone := *sub
	return &clone, nil
}

func (m *MockUserRepository) Unsubscribe(_ context.Context, subscriptionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[subscriptionID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.subs, subscriptionID)
	return nil
}

func (m *MockUserRepository) ListSubscriptionsByCheck(_ context.Context, checkID int64) ([]*domain.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Subscription
	for _, s := range m.subs {
		if s.CheckID == checkID {
			clone := *s
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockUserRepository) ListRecipientsByCheck(_ context.Context, checkID int64) ([]*domain.User, error) {
	if m.RecipientsErr != nil {
		return nil, m.RecipientsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, s := range m.subs {
		if s.CheckID != checkID {
			continue
		}
		u, ok := m.users[s.UserID]
		if !ok || !u.IsActive {
			continue
		}
		clone := *u
		result = append(result, &clone)
	}
	return result, nil
}

var _ UserRepository = (*MockUserRepository)(nil)
