// internal/history/redis.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spellrush/spellrush/internal/lobby"
)

// DefaultQueueName is the Redis list finished-game summaries are pushed
// onto for an external stats consumer.
const DefaultQueueName = "spellrush_games"

// Publisher pushes post-game summaries onto a Redis queue. It is optional
// plumbing: when no Redis address is configured the server simply runs
// without one.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher connects to Redis at addr and verifies the connection.
func NewPublisher(addr string, db int) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Publisher{rdb: rdb, queue: DefaultQueueName}, nil
}

// Publish serializes the summary to JSON and appends it to the queue.
// Failures are the caller's to log; they never affect game flow.
func (p *Publisher) Publish(ctx context.Context, summary lobby.GameSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal game summary: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", p.queue, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
