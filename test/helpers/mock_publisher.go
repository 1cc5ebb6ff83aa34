package helpers

import (
	"context"
	"sync"
)

// PublishedEvent captures one Publish call for assertions.
type PublishedEvent struct {
	Queue     string
	EventType string
	Key       string
	Payload   interface{}
}

// MockPublisher records events instead of writing to kafka.
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

// NewMockPublisher creates an empty recording publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) Publish(_ context.Context, queue, eventType, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, PublishedEvent{Queue: queue, EventType: eventType, Key: key, Payload: payload})
	return nil
}

// ByType returns the recorded events of one type.
func (p *MockPublisher) ByType(eventType string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PublishedEvent
	for _, e := range p.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
