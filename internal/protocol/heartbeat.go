package protocol

import (
	"time"

	"github.com/blockduel/blockduel-go/internal/dependencies/clock"
	"github.com/blockduel/blockduel-go/internal/model"
)

const (
	// DefaultHeartbeatInterval is how often each side broadcasts liveness.
	DefaultHeartbeatInterval = 5 * time.Second
	// DefaultSilenceThreshold is how long a peer may go quiet before the
	// disconnect grace countdown starts.
	DefaultSilenceThreshold = 15 * time.Second
	// DefaultGraceWindow is how long the countdown runs before the match is
	// settled as a timeout loss for the silent side.
	DefaultGraceWindow = 40 * time.Second
)

// HeartbeatMonitor tracks peer liveness from heartbeat events. Silence past
// the threshold starts a grace countdown; a heartbeat observed before the
// deadline clears it, and a countdown that expires reports a timeout.
type HeartbeatMonitor struct {
	clock            clock.Clock
	silenceThreshold time.Duration
	graceWindow      time.Duration

	lastSeen  map[model.PlayerID]time.Time
	deadlines map[model.PlayerID]time.Time
}

// NewHeartbeatMonitor creates a monitor with the given windows; zero values
// fall back to the defaults.
func NewHeartbeatMonitor(clk clock.Clock, silenceThreshold, graceWindow time.Duration) *HeartbeatMonitor {
	if silenceThreshold <= 0 {
		silenceThreshold = DefaultSilenceThreshold
	}
	if graceWindow <= 0 {
		graceWindow = DefaultGraceWindow
	}
	return &HeartbeatMonitor{
		clock:            clk,
		silenceThreshold: silenceThreshold,
		graceWindow:      graceWindow,
		lastSeen:         make(map[model.PlayerID]time.Time),
		deadlines:        make(map[model.PlayerID]time.Time),
	}
}

// Observe records a liveness signal, clearing any running countdown.
func (m *HeartbeatMonitor) Observe(id model.PlayerID) {
	m.lastSeen[id] = m.clock.Now()
	delete(m.deadlines, id)
}

// Deadline returns the running grace deadline for a player, or zero.
func (m *HeartbeatMonitor) Deadline(id model.PlayerID) time.Time {
	return m.deadlines[id]
}

// TimedOut checks one tracked player, starting the grace countdown on first
// detection of silence and reporting true once the countdown has expired.
func (m *HeartbeatMonitor) TimedOut(id model.PlayerID) bool {
	seen, ok := m.lastSeen[id]
	if !ok {
		// Never heard from; start the clock at first check.
		m.lastSeen[id] = m.clock.Now()
		return false
	}

	now := m.clock.Now()
	if deadline, running := m.deadlines[id]; running {
		return !now.Before(deadline)
	}
	if now.Sub(seen) >= m.silenceThreshold {
		m.deadlines[id] = now.Add(m.graceWindow)
	}
	return false
}
