package notify

import (
	"context"
	"sync"
)

// InMemoryDispatcher records messages for assertions. FailWith injects a
// delivery error to exercise the non-fatal dispatch failure path.
type InMemoryDispatcher struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{}
}

func (d *InMemoryDispatcher) Send(_ context.Context, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.messages = append(d.messages, msg)
	return nil
}

// FailWith makes every subsequent Send return err. Pass nil to heal.
func (d *InMemoryDispatcher) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Messages returns a copy of everything sent so far.
func (d *InMemoryDispatcher) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Message, len(d.messages))
	copy(out, d.messages)
	return out
}
