package testutil

import (
	"context"
	"sync"

	"mutsamarket/pkg/events"
)

// Publisher records published events in memory.
type Publisher struct {
	mu     sync.Mutex
	Events []*events.Event
}

func (p *Publisher) Publish(_ context.Context, _ string, event *events.Event, _ events.Headers) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *Publisher) Close() error { return nil }

// Names returns the published event names in order.
func (p *Publisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		names = append(names, e.Event)
	}
	return names
}
