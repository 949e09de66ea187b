// Package notify delivers credential access links through the messaging
// collaborator. The dispatcher is a constructed dependency injected into the
// credential service; delivery failures are the caller's to log, never to
// fail on.
package notify

import "context"

// Message is one access-link delivery.
type Message struct {
	AccessURL string
	Recipient string
	Variables map[string]string
}

// Dispatcher sends a message. Implementations must be safe for concurrent
// use.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// Noop discards messages. Wired when no dispatch endpoint is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) error { return nil }
