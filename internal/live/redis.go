package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Redis is a Notifier backed by Redis pub/sub, for deployments where several
// service instances share one database.
type Redis struct {
	client *redis.Client
	prefix string

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
	closed  bool
	wg      sync.WaitGroup
}

// NewRedis connects to the Redis server at url (redis://host:port/db) and
// verifies the connection.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisClient(client, prefix), nil
}

// NewRedisClient wraps an existing client. Close closes the client.
func NewRedisClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "pantrypal"
	}
	return &Redis{
		client:  client,
		prefix:  prefix,
		cancels: make(map[int]context.CancelFunc),
	}
}

// Channel returns the pub/sub channel carrying ownerID's changes.
func (r *Redis) Channel(ownerID string) string {
	return fmt.Sprintf("%s:pantry:%s", r.prefix, ownerID)
}

// Publish signals every subscriber of ownerID on every instance.
func (r *Redis) Publish(ctx context.Context, ownerID string) error {
	if err := r.client.Publish(ctx, r.Channel(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("publishing change: %w", err)
	}
	return nil
}

// Subscribe registers for ownerID's changes. It returns once Redis has
// confirmed the subscription.
func (r *Redis) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, nil, ErrClosed
	}
	id := r.nextID
	r.nextID++
	subCtx, cancel := context.WithCancel(ctx)
	r.cancels[id] = cancel
	r.mu.Unlock()

	release := func() {
		cancel()
		r.mu.Lock()
		delete(r.cancels, id)
		r.mu.Unlock()
	}

	pubsub := r.client.Subscribe(subCtx, r.Channel(ownerID))
	if _, err := pubsub.Receive(subCtx); err != nil {
		pubsub.Close()
		release()
		return nil, nil, fmt.Errorf("subscribing to changes: %w", err)
	}

	out := make(chan struct{}, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			_ = pubsub.Close()
			close(out)
			release()
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					slog.Warn("redis change subscription ended", "owner", ownerID)
					return
				}
				signal(out)
			}
		}
	}()

	return out, release, nil
}

// Close ends all subscriptions and closes the client.
func (r *Redis) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
	return r.client.Close()
}
