package repository

import (
	"context"
	"sync"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// MockCheckRepository is a hand-written, in-memory implementation of
// CheckRepository used in unit tests. No mock-generation library needed.
type MockCheckRepository struct {
	mu     sync.RWMutex
	checks map[int64]*domain.Check
	nextID int64

	GetByNameErr error
}

func NewMockCheckRepository() *MockCheckRepository {
	return &MockCheckRepository{checks: make(map[int64]*domain.Check), nextID: 1}
}

func (m *MockCheckRepository) Create(_ context.Context, c *domain.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.checks {
		if existing.Name == c.Name {
			return domain.ErrConflict
		}
	}
	c.ID = m.nextID
	m.nextID++
	clone := *c
	m.checks[c.ID] = &clone
	return nil
}

func (m *MockCheckRepository) GetByID(_ context.Context, id int64) (*domain.Check, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockCheckRepository) GetByName(_ context.Context, name string) (*domain.Check, error) {
	if m.GetByNameErr != nil {
		return nil, m.GetByNameErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.checks {
		if c.Name == name {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCheckRepository) List(_ context.Context, _, _ int) ([]*domain.Check, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Check, 0, len(m.checks))
	for _, c := range m.checks {
		clone := *c
		result = append(result, &clone)
	}
	return result, len(result), nil
}

func (m *MockCheckRepository) Update(_ context.Context, c *domain.Check) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checks[c.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *c
	m.checks[c.ID] = &clone
	return nil
}

func (m *MockCheckRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.checks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.checks, id)
	return nil
}

func (m *MockCheckRepository) ListScheduled(_ context.Context) ([]*domain.Check, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Check
	for _, c := range m.checks {
		if c.Enabled && c.Schedule != nil && *c.Schedule != "" {
			clone := *c
			result = append(result, &clone)
		}
	}
	return result, nil
}

var _ CheckRepository = (*MockCheckRepository)(nil)
