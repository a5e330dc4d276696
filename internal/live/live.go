// Package live fans out "the pantry of this owner changed" signals to the
// connections that are watching it.
package live

import (
	"context"
	"errors"
)

// ErrClosed is returned when a notifier is used after Close.
var ErrClosed = errors.New("notifier closed")

// Notifier delivers change signals per owner. Signals carry no payload and
// coalesce: a subscriber that is busy reloading sees at most one pending
// signal no matter how many changes happened in the meantime.
type Notifier interface {
	// Publish signals every subscriber of ownerID.
	Publish(ctx context.Context, ownerID string) error

	// Subscribe registers for ownerID's changes. The returned channel is
	// closed when cancel is called or ctx is done. cancel is idempotent.
	Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error)

	// Close ends all subscriptions and releases resources.
	Close() error
}

// signal performs a non-blocking send so pending signals coalesce.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
