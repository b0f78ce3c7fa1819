package domain

import "context"

// Sink is the remote store that durably keeps delivered entries.
// A Sink performs a single create per call and never retries on its own.
type Sink interface {
	Deliver(ctx context.Context, entry *Entry) error
}
