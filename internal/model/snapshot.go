package model

import (
	"time"

	"github.com/blockduel/blockduel-go/internal/engine"
)

// SideSnapshot is one player's half of a match snapshot: the fixed board
// plus the counters needed to resume after a reconnect.
type SideSnapshot struct {
	Board          engine.Board `json:"board"`
	Score          int          `json:"score"`
	TotalLines     int          `json:"totalLines"`
	PendingGarbage int          `json:"pendingGarbage"`
	Seq            uint64       `json:"seq"`
	GameOver       bool         `json:"gameOver"`
}

// MatchSnapshot is a point-in-time serialization of both sides, produced on
// the snapshot cadence (every N lock events or T seconds) purely for
// reconnection recovery. It is not part of the live simulation loop.
type MatchSnapshot struct {
	MatchID MatchID                   `json:"matchId"`
	Version uint64                    `json:"version"`
	Sides   map[PlayerID]SideSnapshot `json:"sides"`
	TakenAt time.Time                 `json:"takenAt"`
}

// Validate reports whether every side's board has legal dimensions. A
// snapshot failing validation on load is discarded in favor of a fresh board.
func (s *MatchSnapshot) Validate() bool {
	if len(s.Sides) == 0 {
		return false
	}
	for _, side := range s.Sides {
		if !side.Board.Valid() {
			return false
		}
	}
	return true
}
