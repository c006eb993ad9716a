// Package snapshot persists periodic point-in-time captures of both boards
// of a match. Snapshots exist purely for reconnection recovery; the live
// simulation never reads them.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"github.com/blockduel/blockduel-go/internal/dependencies/clock"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/storage"
)

const (
	// DefaultLockInterval is how many lock events pass between snapshots.
	DefaultLockInterval = 8
	// DefaultTimeInterval is the wall-clock fallback between snapshots.
	DefaultTimeInterval = 10 * time.Second
)

// Service records and restores match snapshots
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a snapshot Service
func NewService(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "snapshot-service")),
	}
}

// Record persists a new snapshot, stamping it with the next version and the
// current time. Invalid snapshots are rejected before they can poison a
// later restore.
func (s *Service) Record(ctx context.Context, matchID model.MatchID, sides map[model.PlayerID]model.SideSnapshot) (*model.MatchSnapshot, error) {
	snapshot := &model.MatchSnapshot{
		MatchID: matchID,
		Version: 1,
		Sides:   sides,
		TakenAt: s.clock.Now(),
	}
	if !snapshot.Validate() {
		return nil, model.ErrSnapshotInvalid
	}

	if prev, err := s.storage.LatestSnapshot(ctx, matchID); err == nil {
		snapshot.Version = prev.Version + 1
	}

	if err := s.storage.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Latest returns the most recent valid snapshot for a match. A stored
// snapshot that fails validation is treated as absent rather than returned,
// so a corrupt capture costs a resync instead of a crash.
func (s *Service) Latest(ctx context.Context, matchID model.MatchID) (*model.MatchSnapshot, error) {
	snapshot, err := s.storage.LatestSnapshot(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !snapshot.Validate() {
		s.logger.Warn("discarding invalid stored snapshot",
			slog.String("match_id", string(matchID)),
			slog.Uint64("version", snapshot.Version))
		return nil, model.ErrSnapshotNotFound
	}
	return snapshot, nil
}

// Delete removes a match's snapshot after the match is settled.
func (s *Service) Delete(ctx context.Context, matchID model.MatchID) error {
	return s.storage.DeleteSnapshot(ctx, matchID)
}

// Cadence decides when a snapshot is due: every LockInterval lock events or
// TimeInterval of wall clock, whichever comes first.
type Cadence struct {
	clock        clock.Clock
	lockInterval int
	timeInterval time.Duration

	locksSinceLast int
	lastTaken      time.Time
}

// NewCadence creates a cadence tracker; non-positive intervals fall back to
// the defaults.
func NewCadence(clk clock.Clock, lockInterval int, timeInterval time.Duration) *Cadence {
	if lockInterval <= 0 {
		lockInterval = DefaultLockInterval
	}
	if timeInterval <= 0 {
		timeInterval = DefaultTimeInterval
	}
	return &Cadence{
		clock:        clk,
		lockInterval: lockInterval,
		timeInterval: timeInterval,
		lastTaken:    clk.Now(),
	}
}

// ObserveLock counts one lock event toward the cadence.
func (c *Cadence) ObserveLock() {
	c.locksSinceLast++
}

// Due reports whether a snapshot should be taken now.
func (c *Cadence) Due() bool {
	if c.locksSinceLast >= c.lockInterval {
		return true
	}
	return c.clock.Now().Sub(c.lastTaken) >= c.timeInterval
}

// Taken resets the cadence after a snapshot was recorded.
func (c *Cadence) Taken() {
	c.locksSinceLast = 0
	c.lastTaken = c.clock.Now()
}
