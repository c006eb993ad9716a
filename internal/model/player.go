package model

// PlayerID uniquely identifies a player across the system. Identity comes
// from an external session provider; the engine only needs a stable string.
type PlayerID string

// Player represents a match participant. IsGuest gates whether outcomes feed
// persisted statistics, which is outside this library's scope.
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool
}
