package live

import (
	"context"
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

const busTopic = "pantry:changed"

// Bus is an in-process Notifier for single-instance deployments.
type Bus struct {
	bus evbus.Bus

	mu     sync.Mutex
	subs   map[string]map[chan struct{}]struct{}
	closed bool
}

// NewBus creates an in-process notifier.
func NewBus() *Bus {
	b := &Bus{
		bus:  evbus.New(),
		subs: make(map[string]map[chan struct{}]struct{}),
	}
	// A single handler dispatches by owner, so subscriptions never touch the
	// underlying bus and there is no lock ordering between the two.
	b.bus.Subscribe(busTopic, b.dispatch)
	return b
}

func (b *Bus) dispatch(ownerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ownerID] {
		signal(ch)
	}
}

// Publish signals every subscriber of ownerID.
func (b *Bus) Publish(_ context.Context, ownerID string) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	b.bus.Publish(busTopic, ownerID)
	return nil
}

// Subscribe registers for ownerID's changes.
func (b *Bus) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrClosed
	}
	set := b.subs[ownerID]
	if set == nil {
		set = make(map[chan struct{}]struct{})
		b.subs[ownerID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			set := b.subs[ownerID]
			if _, ok := set[ch]; !ok {
				return // already closed by Close
			}
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, ownerID)
			}
			close(ch)
		})
	}
	stop := context.AfterFunc(ctx, remove)

	cancel := func() {
		stop()
		remove()
	}
	return ch, cancel, nil
}

// Close ends all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for ownerID, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, ownerID)
	}
	b.mu.Unlock()

	// Publish holds the bus lock while dispatching, so b.mu must be free here.
	return b.bus.Unsubscribe(busTopic, b.dispatch)
}
