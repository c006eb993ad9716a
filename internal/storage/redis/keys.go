package redis

import (
	"fmt"

	"github.com/blockduel/blockduel-go/internal/model"
)

// Key prefix for all match-related data
const keyPrefix = "blockduel"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// matchKey returns the Redis key for a Match
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// codeIndexKey returns the Redis key for the join-code -> match_id index
func codeIndexKey(code model.MatchCode) string {
	return fmt.Sprintf("%s:idx:code:%s", keyPrefix, code)
}

// snapshotKey returns the Redis key for a match's latest snapshot
func snapshotKey(matchID model.MatchID) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, matchID)
}
