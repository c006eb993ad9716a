package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blockduel/blockduel-go/internal/api/middleware"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/protocol"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/transport"
)

// maxEventBytes bounds an incoming envelope; a full board payload is a few KB.
const maxEventBytes = 64 << 10

// EventsHandler relays match events: clients POST wire envelopes and hold a
// GET SSE stream open to receive the opponent's. The relay validates
// envelopes against the protocol schema but never simulates; each client owns
// its own board.
type EventsHandler struct {
	matches   match.ControllerInterface
	transport transport.Transport
	logger    *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(matches match.ControllerInterface, tr transport.Transport, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		matches:   matches,
		transport: tr,
		logger:    logger.With(slog.String("component", "events_handler")),
	}
}

// Publish handles POST /api/v1/matches/{id}/events
func (h *EventsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	id := model.MatchID(mux.Vars(r)["id"])

	m, err := h.matches.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !m.HasPlayer(playerID) {
		WriteError(w, model.ErrNotInMatch)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		WriteError(w, NewInvalidRequestError("failed to read request body"))
		return
	}

	env, payload, err := protocol.Decode(body)
	if err != nil {
		WriteError(w, NewInvalidEventError(err.Error()))
		return
	}
	if env.MatchID != id {
		WriteError(w, NewInvalidEventError("envelope match id does not match URL"))
		return
	}
	if sender := eventSender(payload); sender != "" && sender != playerID {
		WriteError(w, NewInvalidEventError("event sender does not match caller"))
		return
	}

	if err := h.transport.Publish(r.Context(), id, body); err != nil {
		h.logger.Error("publish event",
			slog.String("match_id", string(id)),
			slog.String("type", string(env.Type)),
			slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// eventSender extracts the originating player from a decoded payload, or
// empty for types that carry no sender.
func eventSender(payload any) model.PlayerID {
	switch p := payload.(type) {
	case protocol.PieceLockedPayload:
		return p.PlayerID
	case protocol.GarbageSentPayload:
		return p.FromPlayerID
	case protocol.ResyncRequestPayload:
		return p.RequesterID
	case protocol.ResyncStatePayload:
		return p.PlayerID
	case protocol.HeartbeatPayload:
		return p.PlayerID
	default:
		return ""
	}
}

// Stream handles GET /api/v1/matches/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	id := model.MatchID(mux.Vars(r)["id"])

	m, err := h.matches.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !m.HasPlayer(playerID) {
		WriteError(w, model.ErrNotInMatch)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, cancel, err := h.transport.Subscribe(r.Context(), id)
	if err != nil {
		WriteError(w, NewInternalError())
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Tell the client how long to wait before reconnecting
	fmt.Fprintf(w, "retry: 3000\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
