package in_memory

import (
	"context"
	"sync"

	"otcledger/internal/domain"
	"otcledger/internal/port"
)

// Publisher records events instead of delivering them. Tests assert
// against the recorded sequence.
type Publisher struct {
	mu     sync.Mutex
	events []domain.Event
}

var _ port.Publisher = (*Publisher)(nil)

func NewPublisher() *Publisher { return &Publisher{} }

func (p *Publisher) Publish(ctx context.Context, e domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}
