package audit

import (
	"context"
	"sync"
)

// MemorySink keeps events in a bounded in-memory window. It backs tests
// and single-node deployments where no broker is configured; once the
// window is full the oldest events are discarded.
type MemorySink struct {
	mu     sync.RWMutex
	limit  int
	events []Event
}

// NewMemorySink returns a sink retaining at most limit events. A limit
// of zero or less means unbounded.
func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = s.events[len(s.events)-s.limit:]
	}
	return nil
}

// List returns all retained events, oldest first.
func (s *MemorySink) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}

// ListBySubject returns retained events for one subject, oldest first.
func (s *MemorySink) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Event
	for _, event := range s.events {
		if event.Subject == subject {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func (s *MemorySink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
