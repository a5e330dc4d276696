package pantry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Subscription delivers snapshots of one owner's pantry until closed.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops delivery and releases the notifier registration. It does not
// wait for a callback that is already running. Closing twice is a no-op.
func (s *Subscription) Close() {
	s.cancel()
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe calls onChange with the owner's current pantry and again after
// every change to it. Calls never overlap. A snapshot that fails to load is
// logged and skipped; the subscription stays alive. It ends when Close is
// called or ctx is done.
func (s *Service) Subscribe(ctx context.Context, ownerID string, onChange func(*View)) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	// Register before the first load so no change falls in between.
	changes, stop, err := s.notifier.Subscribe(subCtx, ownerID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribing to pantry changes: %w", err)
	}

	initial, err := s.List(subCtx, ownerID)
	if err != nil {
		stop()
		cancel()
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	s.liveSubs.Add(ctx, 1)

	go func() {
		defer close(sub.done)
		defer s.liveSubs.Add(context.WithoutCancel(ctx), -1)
		defer stop()

		view := initial
		for {
			if subCtx.Err() != nil {
				return
			}
			if view != nil {
				onChange(view)
			}

			select {
			case <-subCtx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}

			next, err := s.List(subCtx, ownerID)
			if err != nil && subCtx.Err() == nil {
				slog.Error("reloading pantry", "owner", ownerID, "error", err)
			}
			view = next
		}
	}()

	return sub, nil
}

// ListModel holds the pantry list shown on one screen or connection.
type ListModel struct {
	svc      *Service
	onUpdate func(*View)

	mu   sync.Mutex
	sub  *Subscription
	gen  int
	view *View
}

// NewListModel creates a list model. onUpdate, if not nil, is called after
// every snapshot has been stored.
func NewListModel(svc *Service, onUpdate func(*View)) *ListModel {
	return &ListModel{svc: svc, onUpdate: onUpdate}
}

// Show starts following ownerID's pantry, replacing any previous
// subscription.
func (m *ListModel) Show(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.gen++
	gen := m.gen
	m.view = nil
	m.mu.Unlock()

	sub, err := m.svc.Subscribe(ctx, ownerID, func(v *View) {
		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			return
		}
		m.view = v
		m.mu.Unlock()

		if m.onUpdate != nil {
			m.onUpdate(v)
		}
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		// Show or Hide was called again while subscribing.
		sub.Close()
		return nil
	}
	m.sub = sub
	return nil
}

// Hide stops following the pantry. The last snapshot stays available.
func (m *ListModel) Hide() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
}

// Close stops following the pantry and waits until no onUpdate call is
// running, so whatever onUpdate writes to can be released afterwards. It must
// not be called from onUpdate.
func (m *ListModel) Close() {
	m.mu.Lock()
	m.gen++
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()

	if sub != nil {
		sub.Close()
		<-sub.Done()
	}
}

// View returns the latest snapshot, or nil before the first one arrived.
func (m *ListModel) View() *View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Rows returns the rows of the latest snapshot.
func (m *ListModel) Rows() []Row {
	if v := m.View(); v != nil {
		return v.Rows
	}
	return nil
}
