// Package redis is a Redis pub/sub transport, used when the two sides of a
// match are served by different relay nodes.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/transport"
)

const subscriberBuffer = 256

// channelKey returns the pub/sub channel name for a match
func channelKey(matchID model.MatchID) string {
	return fmt.Sprintf("blockduel:events:%s", matchID)
}

// Transport is a Redis pub/sub implementation of the transport interface
type Transport struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure Transport implements the interface
var _ transport.Transport = (*Transport)(nil)

// New creates a Redis transport from a connection URL
func New(url string, logger *slog.Logger) (*Transport, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, logger), nil
}

// NewWithClient creates a Redis transport with an existing client (for testing)
func NewWithClient(client *redis.Client, logger *slog.Logger) *Transport {
	return &Transport{
		client: client,
		logger: logger.With(slog.String("component", "transport-redis")),
	}
}

// Close closes the Redis connection
func (t *Transport) Close() error {
	return t.client.Close()
}

// Publish sends a message to every subscriber of the match's channel.
func (t *Transport) Publish(ctx context.Context, matchID model.MatchID, message []byte) error {
	return t.client.Publish(ctx, channelKey(matchID), message).Err()
}

// Subscribe opens a pub/sub subscription on the match's channel. The returned
// cancel function closes the subscription and, eventually, the channel.
func (t *Transport) Subscribe(ctx context.Context, matchID model.MatchID) (<-chan []byte, func(), error) {
	pubsub := t.client.Subscribe(ctx, channelKey(matchID))

	// Wait for the subscription to be confirmed so a Publish immediately
	// after Subscribe returns is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan []byte, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			default:
				t.logger.Warn("transport message dropped - subscriber buffer full",
					slog.String("match_id", string(matchID)))
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return out, cancel, nil
}
