package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChangeFeed announces writes to a collection. Subscribers receive ticks,
// not payloads; they re-read the collection to get the current snapshot.
type ChangeFeed interface {
	Notify(ctx context.Context, collection string) error
	// Subscribe returns a channel that receives one tick immediately and one
	// per change after that. Ticks may be coalesced. The channel is closed
	// when ctx is done.
	Subscribe(ctx context.Context, collection string) (<-chan struct{}, error)
}

func channelName(collection string) string {
	return "changes:" + collection
}

func newTickChannel() chan struct{} {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	return ch
}

func tick(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// RedisChangeFeed fans change ticks out over Redis pub/sub so every server
// instance sees writes made by the others.
type RedisChangeFeed struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisChangeFeed(client *redis.Client, logger *slog.Logger) *RedisChangeFeed {
	return &RedisChangeFeed{client: client, logger: logger}
}

func (f *RedisChangeFeed) Notify(ctx context.Context, collection string) error {
	if err := f.client.Publish(ctx, channelName(collection), collection).Err(); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", collection, err)
	}
	return nil
}

func (f *RedisChangeFeed) Subscribe(ctx context.Context, collection string) (<-chan struct{}, error) {
	pubsub := f.client.Subscribe(ctx, channelName(collection))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", collection, err)
	}

	out := newTickChannel()
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					f.logger.Warn("Change feed subscription closed", "collection", collection)
					return
				}
				tick(out)
			}
		}
	}()
	return out, nil
}

// MemoryNotifier is a single-process ChangeFeed
type MemoryNotifier struct {
	mu          sync.Mutex
	subscribers map[string]map[chan struct{}]struct{}
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subscribers: make(map[string]map[chan struct{}]struct{})}
}

func (m *MemoryNotifier) Notify(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subscribers[collection] {
		tick(ch)
	}
	return nil
}

func (m *MemoryNotifier) Subscribe(ctx context.Context, collection string) (<-chan struct{}, error) {
	ch := newTickChannel()

	m.mu.Lock()
	if m.subscribers[collection] == nil {
		m.subscribers[collection] = make(map[chan struct{}]struct{})
	}
	m.subscribers[collection][ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subscribers[collection], ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// WatchSnapshots re-runs load on every tick of collection and delivers the
// full result. Consumers replace their state with each snapshot. Load errors
// are reported through onError and the watch continues with the next tick.
// The returned channel is closed when ctx is done.
func WatchSnapshots[T any](
	ctx context.Context,
	feed ChangeFeed,
	collection string,
	load func(ctx context.Context) ([]T, error),
	onError func(error),
) (<-chan []T, error) {
	ticks, err := feed.Subscribe(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := make(chan []T)
	go func() {
		defer close(out)
		for range ticks {
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if onError != nil {
					onError(err)
				}
				continue
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
