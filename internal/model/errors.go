package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Match errors
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchFull       = errors.New("match already has two players")
	ErrAlreadyInMatch  = errors.New("player is already in match")
	ErrNotInMatch      = errors.New("player is not in match")
	ErrMatchNotWaiting = errors.New("match is not waiting for players")
	ErrMatchNotPlaying = errors.New("match is not in progress")
	ErrMatchEnded      = errors.New("match has already ended")
	ErrNotReady        = errors.New("both players must be ready")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("no snapshot recorded for match")
	ErrSnapshotInvalid  = errors.New("snapshot failed validation")
)
