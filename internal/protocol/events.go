// Package protocol defines the match synchronization wire format and the
// per-match session logic that keeps two independently simulated clients
// consistent. The design synchronizes lock outcomes only, never per-frame
// falling motion: each side runs its own gravity loop and broadcasts its
// full fixed board when a piece locks, so a missed event self-heals on the
// next one.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
)

// EventType tags the wire envelope.
type EventType string

const (
	EventMatchStarted  EventType = "match_started"
	EventPieceLocked   EventType = "piece_locked"
	EventGarbageSent   EventType = "garbage_sent"
	EventResyncRequest EventType = "resync_request"
	EventResyncState   EventType = "resync_state"
	EventHeartbeat     EventType = "heartbeat"
)

// Envelope is the top-level wire format for all match events.
type Envelope struct {
	Type    EventType       `json:"type"`
	MatchID model.MatchID   `json:"matchId"`
	Payload json.RawMessage `json:"payload"`
}

// MatchStartedPayload announces the lobby -> playing transition. The shared
// seed lets both sides construct identical piece generators.
type MatchStartedPayload struct {
	Seed    int32          `json:"seed"`
	StartAt time.Time      `json:"startAt"`
	HostID  model.PlayerID `json:"hostId"`
	GuestID model.PlayerID `json:"guestId"`
}

// PieceLockedPayload is emitted immediately after a side's own gravity tick
// reports a lock. BoardFixed is the complete fixed-cell board, not a delta.
type PieceLockedPayload struct {
	PlayerID          model.PlayerID `json:"playerId"`
	Seq               uint64         `json:"seq"`
	BoardFixed        engine.Board   `json:"boardFixed"`
	Score             int            `json:"score"`
	LinesClearedTotal int            `json:"linesClearedTotal"`
	SentGarbage       int            `json:"sentGarbage"`
	GameOver          bool           `json:"gameOver"`
}

// GarbageSentPayload accompanies a piece_locked whose clear sent garbage.
type GarbageSentPayload struct {
	FromPlayerID model.PlayerID `json:"fromPlayerId"`
	ToPlayerID   model.PlayerID `json:"toPlayerId"`
	Seq          uint64         `json:"seq"`
	Count        int            `json:"count"`
}

// ResyncRequestPayload asks the peer to rebroadcast its full state.
type ResyncRequestPayload struct {
	RequesterID model.PlayerID `json:"requesterId"`
}

// ResyncStatePayload is the peer's full current state, adopted by the
// requester if its seq is not older than what the requester already has.
type ResyncStatePayload struct {
	PlayerID       model.PlayerID `json:"playerId"`
	Seq            uint64         `json:"seq"`
	BoardFixed     engine.Board   `json:"boardFixed"`
	Score          int            `json:"score"`
	PendingGarbage int            `json:"pendingGarbage"`
	GameOver       bool           `json:"gameOver"`
}

// HeartbeatPayload is the periodic liveness signal.
type HeartbeatPayload struct {
	PlayerID model.PlayerID `json:"playerId"`
	TS       time.Time      `json:"ts"`
}

// Encode wraps a typed payload into a wire envelope.
func Encode(matchID model.MatchID, eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{Type: eventType, MatchID: matchID, Payload: raw})
}

// Decode parses a wire envelope and validates its payload against the schema
// for its type, returning the envelope plus the decoded payload. Unknown
// event types and malformed payloads produce typed errors rather than
// silently substituted defaults.
func Decode(data []byte) (Envelope, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.MatchID == "" {
		return Envelope{}, nil, fmt.Errorf("decode envelope: missing match id")
	}

	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, payload, nil
}

func decodePayload(eventType EventType, raw json.RawMessage) (any, error) {
	switch eventType {
	case EventMatchStarted:
		var p MatchStartedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		if p.HostID == "" || p.GuestID == "" {
			return nil, fmt.Errorf("decode %s: missing participant ids", eventType)
		}
		return p, nil

	case EventPieceLocked:
		var p PieceLockedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		if p.PlayerID == "" {
			return nil, fmt.Errorf("decode %s: missing player id", eventType)
		}
		if !p.BoardFixed.Valid() {
			return nil, fmt.Errorf("decode %s: board is not %dx%d", eventType, engine.Rows, engine.Cols)
		}
		return p, nil

	case EventGarbageSent:
		var p GarbageSentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		if p.Count <= 0 {
			return nil, fmt.Errorf("decode %s: non-positive count", eventType)
		}
		return p, nil

	case EventResyncRequest:
		var p ResyncRequestPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		return p, nil

	case EventResyncState:
		var p ResyncStatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		if !p.BoardFixed.Valid() {
			return nil, fmt.Errorf("decode %s: board is not %dx%d", eventType, engine.Rows, engine.Cols)
		}
		return p, nil

	case EventHeartbeat:
		var p HeartbeatPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", eventType, err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("decode envelope: unknown event type %q", eventType)
	}
}
