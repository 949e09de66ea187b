// Package publisher decouples event emission from persistence. In sync mode
// Emit writes through to the store; with an async buffer events are queued
// and drained by a background goroutine so scan latency never waits on the
// audit sink.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/audit"
)

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	wg    sync.WaitGroup
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given queue depth.
// When the queue is full Emit falls back to a synchronous write rather than
// dropping the event.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets the logger used for sink failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher constructs a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. Async mode enqueues; sync mode writes through.
// Audit failures must not fail the owning operation, so async enqueue always
// succeeds and sink errors surface only in logs.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AccessEvent(event.Action).Category()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		// Queue full: write through so the event is not lost.
		return p.store.Append(ctx, event)
	}
}

// List returns events for an attendee from the underlying store.
func (p *Publisher) List(ctx context.Context, attendeeID id.AttendeeID) ([]audit.Event, error) {
	return p.store.ListByAttendee(ctx, attendeeID)
}

// Close drains any queued events and stops the background goroutine.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("audit sink append failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
