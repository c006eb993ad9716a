package match

import (
	"context"
	"time"

	"github.com/blockduel/blockduel-go/internal/dependencies/clock"
	"github.com/blockduel/blockduel-go/internal/dependencies/random"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/storage"
)

const (
	// MatchCodeLength is the length of generated join codes
	MatchCodeLength = 6
	// MatchCodeAlphabet is the characters used in join codes (avoid confusing chars)
	MatchCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	matchIDLength   = 12
	matchIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// StartCountdown is the lead time between both sides readying up and
	// the synchronized simulation start.
	StartCountdown = 3 * time.Second
)

// Controller manages the match lifecycle state machine
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
}

// NewController creates a new match Controller
func NewController(storage storage.Storage, clock clock.Clock, random random.Random) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
	}
}

// Create creates a new match in the waiting state with the given player as
// host and a fresh unique join code.
func (c *Controller) Create(ctx context.Context, hostID model.PlayerID) (*model.Match, error) {
	now := c.clock.Now()
	id := model.MatchID(c.random.String(matchIDLength, matchIDAlphabet))

	// Generate unique join code
	var code model.MatchCode
	for {
		code = model.MatchCode(c.random.String(MatchCodeLength, MatchCodeAlphabet))
		exists, err := c.storage.MatchCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	match := &model.Match{
		ID:                 id,
		Code:               code,
		Status:             model.MatchStatusWaiting,
		HostID:             hostID,
		DisconnectDeadline: make(map[model.PlayerID]time.Time),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}

	return match, nil
}

// Get retrieves a match by ID
func (c *Controller) Get(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return c.storage.GetMatch(ctx, id)
}

// GetByCode retrieves a match by its join code
func (c *Controller) GetByCode(ctx context.Context, code model.MatchCode) (*model.Match, error) {
	return c.storage.GetMatchByCode(ctx, code)
}

// Join adds a guest to a waiting match by its join code.
func (c *Controller) Join(ctx context.Context, code model.MatchCode, guestID model.PlayerID) (*model.Match, error) {
	match, err := c.storage.GetMatchByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if match.Status != model.MatchStatusWaiting {
		return nil, model.ErrMatchNotWaiting
	}
	if match.HostID == guestID {
		return nil, model.ErrAlreadyInMatch
	}
	if match.GuestID != "" {
		if match.GuestID == guestID {
			return nil, model.ErrAlreadyInMatch
		}
		return nil, model.ErrMatchFull
	}

	match.GuestID = guestID
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// SetReady marks a participant ready. When both sides are ready the match
// transitions to playing: a shared seed is drawn and a synchronized start
// time is scheduled a short countdown in the future.
func (c *Controller) SetReady(ctx context.Context, id model.MatchID, playerID model.PlayerID) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if !match.HasPlayer(playerID) {
		return nil, model.ErrNotInMatch
	}
	if match.Status != model.MatchStatusWaiting {
		return nil, model.ErrMatchNotWaiting
	}

	switch playerID {
	case match.HostID:
		match.HostReady = true
	case match.GuestID:
		match.GuestReady = true
	}

	if match.BothReady() {
		match.Status = model.MatchStatusPlaying
		match.Seed = c.random.Seed32()
		match.StartAt = c.clock.Now().Add(StartCountdown)
	}
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// Finish settles a playing match with a winner. The first settle wins;
// settling an already ended match is a no-op returning the stored result, so
// both sides reporting the same top-out race safely.
func (c *Controller) Finish(ctx context.Context, id model.MatchID, winnerID model.PlayerID, reason model.EndReason) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if match.Status == model.MatchStatusEnded || match.Status == model.MatchStatusAborted {
		return match, nil
	}
	if match.Status != model.MatchStatusPlaying {
		return nil, model.ErrMatchNotPlaying
	}
	if winnerID != "" && !match.HasPlayer(winnerID) {
		return nil, model.ErrNotInMatch
	}

	match.Status = model.MatchStatusEnded
	match.WinnerID = winnerID
	match.EndReason = reason
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// Abort cancels a match that never completed (e.g. host left the lobby).
func (c *Controller) Abort(ctx context.Context, id model.MatchID) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if match.Status == model.MatchStatusEnded || match.Status == model.MatchStatusAborted {
		return nil, model.ErrMatchEnded
	}

	match.Status = model.MatchStatusAborted
	match.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveMatch(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// SetDisconnectDeadline records the grace countdown deadline for a silent
// player so a reconnecting client can display the remaining window.
func (c *Controller) SetDisconnectDeadline(ctx context.Context, id model.MatchID, playerID model.PlayerID, deadline time.Time) error {
	match, err := c.storage.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if !match.HasPlayer(playerID) {
		return model.ErrNotInMatch
	}

	if match.DisconnectDeadline == nil {
		match.DisconnectDeadline = make(map[model.PlayerID]time.Time)
	}
	match.DisconnectDeadline[playerID] = deadline
	match.UpdatedAt = c.clock.Now()

	return c.storage.SaveMatch(ctx, match)
}

// ClearDisconnectDeadline removes a player's grace countdown after they
// resume heartbeating.
func (c *Controller) ClearDisconnectDeadline(ctx context.Context, id model.MatchID, playerID model.PlayerID) error {
	match, err := c.storage.GetMatch(ctx, id)
	if err != nil {
		return err
	}

	if _, ok := match.DisconnectDeadline[playerID]; !ok {
		return nil
	}
	delete(match.DisconnectDeadline, playerID)
	match.UpdatedAt = c.clock.Now()

	return c.storage.SaveMatch(ctx, match)
}

// Interface for dependency injection
type ControllerInterface interface {
	Create(ctx context.Context, hostID model.PlayerID) (*model.Match, error)
	Get(ctx context.Context, id model.MatchID) (*model.Match, error)
	GetByCode(ctx context.Context, code model.MatchCode) (*model.Match, error)
	Join(ctx context.Context, code model.MatchCode, guestID model.PlayerID) (*model.Match, error)
	SetReady(ctx context.Context, id model.MatchID, playerID model.PlayerID) (*model.Match, error)
	Finish(ctx context.Context, id model.MatchID, winnerID model.PlayerID, reason model.EndReason) (*model.Match, error)
	Abort(ctx context.Context, id model.MatchID) (*model.Match, error)
	SetDisconnectDeadline(ctx context.Context, id model.MatchID, playerID model.PlayerID, deadline time.Time) error
	ClearDisconnectDeadline(ctx context.Context, id model.MatchID, playerID model.PlayerID) error
}

var _ ControllerInterface = (*Controller)(nil)
