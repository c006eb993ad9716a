// Package transport moves match event envelopes between the two sides of a
// match. The relay never interprets payloads; it fans raw bytes out to every
// subscriber on the match's channel, including the publisher.
package transport

import (
	"context"

	"github.com/blockduel/blockduel-go/internal/model"
)

// Transport defines the interface for match event delivery
type Transport interface {
	// Publish sends a message to every subscriber of the match's channel.
	Publish(ctx context.Context, matchID model.MatchID, message []byte) error

	// Subscribe returns a channel of messages for the match plus a cancel
	// function that releases the subscription. Slow subscribers may have
	// messages dropped; the protocol's full-board events self-heal.
	Subscribe(ctx context.Context, matchID model.MatchID) (<-chan []byte, func(), error)
}
