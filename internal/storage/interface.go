package storage

import (
	"context"

	"github.com/blockduel/blockduel-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Match operations
	SaveMatch(ctx context.Context, match *model.Match) error
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	GetMatchByCode(ctx context.Context, code model.MatchCode) (*model.Match, error)
	MatchCodeExists(ctx context.Context, code model.MatchCode) (bool, error)
	DeleteMatch(ctx context.Context, id model.MatchID) error

	// Snapshot operations. Only the latest snapshot per match is retained;
	// snapshots exist for reconnection recovery, not as a history.
	SaveSnapshot(ctx context.Context, snapshot *model.MatchSnapshot) error
	LatestSnapshot(ctx context.Context, matchID model.MatchID) (*model.MatchSnapshot, error)
	DeleteSnapshot(ctx context.Context, matchID model.MatchID) error
}
