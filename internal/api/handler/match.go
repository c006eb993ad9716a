package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/blockduel/blockduel-go/internal/api/middleware"
	"github.com/blockduel/blockduel-go/internal/api/request"
	"github.com/blockduel/blockduel-go/internal/api/response"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/protocol"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
	"github.com/blockduel/blockduel-go/internal/transport"
)

// MatchHandler handles match lifecycle endpoints
type MatchHandler struct {
	matches   match.ControllerInterface
	snapshots *snapshot.Service
	transport transport.Transport
	logger    *slog.Logger
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matches match.ControllerInterface, snapshots *snapshot.Service, tr transport.Transport, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches:   matches,
		snapshots: snapshots,
		transport: tr,
		logger:    logger.With(slog.String("component", "match_handler")),
	}
}

// Create handles POST /api/v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	m, err := h.matches.Create(r.Context(), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(m))
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	m, err := h.matches.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Join handles POST /api/v1/matches/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())

	var req request.JoinMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	m, err := h.matches.Join(r.Context(), model.MatchCode(req.Code), playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Ready handles POST /api/v1/matches/{id}/ready
func (h *MatchHandler) Ready(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	id := model.MatchID(mux.Vars(r)["id"])

	m, err := h.matches.SetReady(r.Context(), id, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}

	// The ready call that completes the pair flips the match to playing;
	// announce the shared seed so both clients start identical generators.
	if m.Status == model.MatchStatusPlaying {
		h.publishMatchStarted(r, m)
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

func (h *MatchHandler) publishMatchStarted(r *http.Request, m *model.Match) {
	msg, err := protocol.Encode(m.ID, protocol.EventMatchStarted, protocol.MatchStartedPayload{
		Seed:    m.Seed,
		StartAt: m.StartAt,
		HostID:  m.HostID,
		GuestID: m.GuestID,
	})
	if err != nil {
		h.logger.Error("encode match_started", slog.String("match_id", string(m.ID)), slog.String("error", err.Error()))
		return
	}
	if err := h.transport.Publish(r.Context(), m.ID, msg); err != nil {
		h.logger.Error("publish match_started", slog.String("match_id", string(m.ID)), slog.String("error", err.Error()))
	}
}

// Finish handles POST /api/v1/matches/{id}/finish
func (h *MatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.MustGetPlayerID(r.Context())
	id := model.MatchID(mux.Vars(r)["id"])

	var req request.FinishMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	m, err := h.matches.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	if !m.HasPlayer(playerID) {
		WriteError(w, model.ErrNotInMatch)
		return
	}

	winnerID := model.PlayerID(req.WinnerID)
	if winnerID == "" {
		// A bare finish is a forfeit by the caller.
		winnerID = m.Opponent(playerID)
	}
	reason := model.EndReason(req.Reason)
	if reason == "" {
		reason = model.EndReasonForfeit
	}

	m, err = h.matches.Finish(r.Context(), id, winnerID, reason)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// Snapshot handles GET /api/v1/matches/{id}/snapshot
func (h *MatchHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
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

	snap, err := h.snapshots.Latest(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, snap)
}
