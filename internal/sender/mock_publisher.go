package sender

import (
	"context"
	"sync"
)

// MockPublisher records published references for unit tests.
type MockPublisher struct {
	mu   sync.Mutex
	refs []SendRef

	PublishErr error
}

func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

func (m *MockPublisher) Publish(_ context.Context, ref SendRef) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs = append(m.refs, ref)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Published returns a copy of every reference published so far.
func (m *MockPublisher) Published() []SendRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendRef, len(m.refs))
	copy(out, m.refs)
	return out
}

var _ Publisher = (*MockPublisher)(nil)
