// Package memory is an in-process transport for single-node deployments and
// tests: one hub per match fans published envelopes out to its subscribers.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/transport"
)

const subscriberBuffer = 256

// subscriber is one live subscription to a match channel.
type subscriber struct {
	send chan []byte
}

// hub manages subscribers for a single match
type hub struct {
	matchID model.MatchID
	mu      sync.RWMutex
	subs    map[*subscriber]bool
	logger  *slog.Logger

	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan []byte
	done       chan struct{}
}

func newHub(matchID model.MatchID, logger *slog.Logger) *hub {
	return &hub{
		matchID:    matchID,
		subs:       make(map[*subscriber]bool),
		logger:     logger.With(slog.String("match_id", string(matchID))),
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// run is the hub's event loop
func (h *hub) run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subs[sub] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subs[sub]; ok {
				delete(h.subs, sub)
				close(sub.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for sub := range h.subs {
				select {
				case sub.send <- message:
				default:
					h.logger.Warn("transport message dropped - subscriber buffer full")
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for sub := range h.subs {
				close(sub.send)
				delete(h.subs, sub)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Transport is an in-memory implementation of the transport interface
type Transport struct {
	mu     sync.RWMutex
	hubs   map[model.MatchID]*hub
	logger *slog.Logger
}

// Ensure Transport implements the interface
var _ transport.Transport = (*Transport)(nil)

// New creates a new in-memory transport
func New(logger *slog.Logger) *Transport {
	return &Transport{
		hubs:   make(map[model.MatchID]*hub),
		logger: logger.With(slog.String("component", "transport-memory")),
	}
}

func (t *Transport) getOrCreateHub(matchID model.MatchID) *hub {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.hubs[matchID]; ok {
		return h
	}

	h := newHub(matchID, t.logger)
	t.hubs[matchID] = h
	go h.run()
	return h
}

// Publish sends a message to every subscriber of the match's channel.
func (t *Transport) Publish(ctx context.Context, matchID model.MatchID, message []byte) error {
	h := t.getOrCreateHub(matchID)
	select {
	case h.broadcast <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a new subscriber on the match's channel.
func (t *Transport) Subscribe(ctx context.Context, matchID model.MatchID) (<-chan []byte, func(), error) {
	h := t.getOrCreateHub(matchID)
	sub := &subscriber{send: make(chan []byte, subscriberBuffer)}

	select {
	case h.register <- sub:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			select {
			case h.unregister <- sub:
			case <-h.done:
			}
		})
	}
	return sub.send, cancel, nil
}

// CloseMatch tears down the hub for a finished match, disconnecting any
// remaining subscribers.
func (t *Transport) CloseMatch(matchID model.MatchID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.hubs[matchID]; ok {
		close(h.done)
		delete(t.hubs, matchID)
	}
}

// CleanupIdleMatches removes hubs with no subscribers.
func (t *Transport) CleanupIdleMatches() {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, h := range t.hubs {
		if h.subscriberCount() == 0 {
			close(h.done)
			delete(t.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		t.logger.Info("transport idle hubs cleaned up", slog.Int("removed", removed))
	}
}
