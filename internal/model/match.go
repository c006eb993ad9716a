package model

import "time"

// MatchID uniquely identifies a match.
type MatchID string

// MatchCode is the short human-readable code used to join a match.
type MatchCode string

// MatchStatus represents the lifecycle phase of a match.
type MatchStatus string

const (
	MatchStatusWaiting MatchStatus = "waiting" // lobby, waiting for guest and/or ready flags
	MatchStatusPlaying MatchStatus = "playing" // both ready, simulation running
	MatchStatusEnded   MatchStatus = "ended"   // settled with a winner
	MatchStatusAborted MatchStatus = "aborted" // cancelled before completion
)

// EndReason records why a match was settled.
type EndReason string

const (
	EndReasonTopOut  EndReason = "top_out" // a side's board filled to the spawn row
	EndReasonForfeit EndReason = "forfeit"
	EndReasonTimeout EndReason = "timeout" // disconnect grace expired
)

// Match is the directory record for one head-to-head game. Both participants
// may attempt concurrent updates, so the service layer treats transitions as
// compare-and-update operations on the stored record.
type Match struct {
	ID     MatchID
	Code   MatchCode
	Status MatchStatus

	HostID  PlayerID
	GuestID PlayerID

	// Seed is assigned on the waiting -> playing transition. Both sides
	// build their piece generators from it, which is what makes lock-only
	// synchronization possible.
	Seed    int32
	StartAt time.Time

	HostReady  bool
	GuestReady bool

	// DisconnectDeadline tracks the per-player grace countdown started when
	// heartbeats go silent; zero time means no countdown is running.
	DisconnectDeadline map[PlayerID]time.Time

	WinnerID  PlayerID
	EndReason EndReason

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer reports whether the given player participates in the match.
func (m *Match) HasPlayer(id PlayerID) bool {
	return id != "" && (m.HostID == id || m.GuestID == id)
}

// Opponent returns the other participant's ID, or empty if id is not a
// participant or no guest has joined yet.
func (m *Match) Opponent(id PlayerID) PlayerID {
	switch id {
	case m.HostID:
		return m.GuestID
	case m.GuestID:
		return m.HostID
	default:
		return ""
	}
}

// BothReady reports whether the match can transition to playing.
func (m *Match) BothReady() bool {
	return m.GuestID != "" && m.HostReady && m.GuestReady
}
