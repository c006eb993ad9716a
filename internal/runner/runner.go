// Package runner drives one side of a match: a local simulation loop that
// ticks gravity, lets an AI planner act, publishes lock events, applies the
// peer's events, and settles the match when someone tops out or goes silent.
// Human-driven sides run the same loop client-side; the server uses runner
// for AI opponents and headless simulation.
package runner

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/blockduel/blockduel-go/internal/ai"
	"github.com/blockduel/blockduel-go/internal/dependencies/clock"
	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/protocol"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
	"github.com/blockduel/blockduel-go/internal/transport"
)

// Config wires one runner to its match.
type Config struct {
	MatchID model.MatchID
	SelfID  model.PlayerID
	PeerID  model.PlayerID
	Seed    int32

	// Difficulty selects the AI tier driving this side.
	Difficulty ai.Difficulty

	HeartbeatInterval time.Duration
	SilenceThreshold  time.Duration
	GraceWindow       time.Duration

	SnapshotLockInterval int
	SnapshotTimeInterval time.Duration
}

// Runner is one side's simulation loop. All methods are called from the
// single Run goroutine; the step methods are exported so tests can drive the
// loop without timers.
type Runner struct {
	cfg Config

	state   engine.State
	gen     *engine.Generator
	session *protocol.Session
	driver  *ai.Driver
	monitor *protocol.HeartbeatMonitor
	cadence *snapshot.Cadence

	transport transport.Transport
	matches   match.ControllerInterface
	snapshots *snapshot.Service
	clock     clock.Clock
	logger    *slog.Logger

	finished bool
}

// New creates a runner for one side of a started match.
func New(
	cfg Config,
	tr transport.Transport,
	matches match.ControllerInterface,
	snapshots *snapshot.Service,
	clk clock.Clock,
	rng *rand.Rand,
	logger *slog.Logger,
) *Runner {
	gen := engine.NewGenerator(cfg.Seed)
	return &Runner{
		cfg:       cfg,
		state:     engine.NewState(gen),
		gen:       gen,
		session:   protocol.NewSession(cfg.MatchID, cfg.SelfID, cfg.PeerID, logger),
		driver:    ai.NewDriver(ai.NewPlanner(cfg.Difficulty, rng)),
		monitor:   protocol.NewHeartbeatMonitor(clk, cfg.SilenceThreshold, cfg.GraceWindow),
		cadence:   snapshot.NewCadence(clk, cfg.SnapshotLockInterval, cfg.SnapshotTimeInterval),
		transport: tr,
		matches:   matches,
		snapshots: snapshots,
		clock:     clk,
		logger: logger.With(
			slog.String("component", "runner"),
			slog.String("match_id", string(cfg.MatchID)),
			slog.String("player_id", string(cfg.SelfID)),
		),
	}
}

// State returns the current local engine state.
func (r *Runner) State() engine.State {
	return r.state
}

// Session returns the runner's protocol session.
func (r *Runner) Session() *protocol.Session {
	return r.session
}

// Finished reports whether the match has been settled from this side's view.
func (r *Runner) Finished() bool {
	return r.finished
}

// Run subscribes to the match channel and loops until the match settles or
// the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	events, cancel, err := r.transport.Subscribe(ctx, r.cfg.MatchID)
	if err != nil {
		return err
	}
	defer cancel()

	// A fresh subscription may have missed events; ask the peer for its
	// current state. On a first start the reply is a blank board and a no-op.
	if err := r.RequestResync(ctx); err != nil {
		return err
	}

	gravity := time.NewTicker(r.cfg.Difficulty.GravityInterval)
	defer gravity.Stop()
	think := time.NewTicker(r.cfg.Difficulty.ThinkInterval)
	defer think.Stop()
	heartbeat := time.NewTicker(r.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	r.logger.Info("runner started", slog.Int("tier", r.cfg.Difficulty.Tier))

	for !r.finished {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case data, ok := <-events:
			if !ok {
				r.logger.Info("match channel closed")
				return nil
			}
			if err := r.HandleEnvelope(ctx, data); err != nil {
				r.logger.Warn("dropping bad envelope", slog.Any("error", err))
			}

		case <-gravity.C:
			if err := r.GravityTick(ctx); err != nil {
				return err
			}

		case <-think.C:
			if err := r.ThinkTick(ctx); err != nil {
				return err
			}

		case <-heartbeat.C:
			if err := r.HeartbeatTick(ctx); err != nil {
				return err
			}
		}
	}

	r.logger.Info("runner finished")
	return nil
}

// HandleEnvelope applies one inbound wire event. Any event from the peer
// counts as liveness.
func (r *Runner) HandleEnvelope(ctx context.Context, data []byte) error {
	env, payload, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	if env.MatchID != r.cfg.MatchID {
		return nil
	}

	switch p := payload.(type) {
	case protocol.PieceLockedPayload:
		if p.PlayerID == r.cfg.PeerID {
			r.observePeer(ctx)
		}
		if r.session.ApplyPieceLocked(p) && p.GameOver {
			// Peer topped out; we win.
			return r.finish(ctx, r.cfg.SelfID, model.EndReasonTopOut)
		}

	case protocol.GarbageSentPayload:
		if p.FromPlayerID == r.cfg.PeerID {
			r.observePeer(ctx)
		}
		r.session.ApplyGarbageSent(p)

	case protocol.ResyncRequestPayload:
		if p.RequesterID != r.cfg.PeerID {
			return nil
		}
		r.observePeer(ctx)
		return r.publish(ctx, protocol.EventResyncState, r.session.BuildResyncState(r.state))

	case protocol.ResyncStatePayload:
		if p.PlayerID == r.cfg.PeerID {
			r.observePeer(ctx)
		}
		r.session.ApplyResyncState(p)

	case protocol.HeartbeatPayload:
		if p.PlayerID == r.cfg.PeerID {
			r.observePeer(ctx)
		}
	}
	return nil
}

// ThinkTick performs one AI action, which may include a gravity step or a
// full drop, and publishes any resulting lock.
func (r *Runner) ThinkTick(ctx context.Context) error {
	if r.finished || r.state.GameOver {
		return nil
	}

	r.applyIncomingGarbage()

	st, res := r.driver.Act(r.state, r.gen)
	r.state = st
	if !res.Locked {
		return nil
	}
	return r.handleLock(ctx, res)
}

// GravityTick forces the active piece down one row regardless of the AI's
// think cadence. Between locks it also gives the wall-clock snapshot
// fallback a chance to fire.
func (r *Runner) GravityTick(ctx context.Context) error {
	if r.finished || r.state.GameOver {
		return nil
	}

	r.applyIncomingGarbage()

	st, res := r.state.StepDown(r.gen)
	r.state = st
	if res.Locked {
		// The plan targeted the piece gravity just locked.
		r.driver.Invalidate()
		return r.handleLock(ctx, res)
	}

	if r.cadence.Due() {
		r.recordSnapshot(ctx)
	}
	return nil
}

// RequestResync broadcasts a request for the peer's full state. Run issues
// one on every subscription, covering both first start and reconnects.
func (r *Runner) RequestResync(ctx context.Context) error {
	return r.publish(ctx, protocol.EventResyncRequest, protocol.ResyncRequestPayload{
		RequesterID: r.cfg.SelfID,
	})
}

// HeartbeatTick publishes liveness and checks the peer's silence countdown.
func (r *Runner) HeartbeatTick(ctx context.Context) error {
	if r.finished {
		return nil
	}

	err := r.publish(ctx, protocol.EventHeartbeat, protocol.HeartbeatPayload{
		PlayerID: r.cfg.SelfID,
		TS:       r.clock.Now(),
	})
	if err != nil {
		return err
	}

	hadDeadline := !r.monitor.Deadline(r.cfg.PeerID).IsZero()
	if r.monitor.TimedOut(r.cfg.PeerID) {
		r.logger.Info("peer grace window expired")
		return r.finish(ctx, r.cfg.SelfID, model.EndReasonTimeout)
	}

	// Record a freshly started countdown so reconnecting clients can show
	// the remaining window.
	if deadline := r.monitor.Deadline(r.cfg.PeerID); !deadline.IsZero() && !hadDeadline {
		if err := r.matches.SetDisconnectDeadline(ctx, r.cfg.MatchID, r.cfg.PeerID, deadline); err != nil {
			r.logger.Warn("failed to record disconnect deadline", slog.Any("error", err))
		}
	}
	return nil
}

// applyIncomingGarbage drains queued garbage into the local board. The hole
// pattern is derived from the shared seed and the attack's position in the
// peer's event stream, so a replay lands identically.
func (r *Runner) applyIncomingGarbage() {
	count := r.session.TakeIncomingGarbage()
	if count <= 0 {
		return
	}

	r.state = r.state.AddGarbage(count)
	r.state = r.state.ApplyPendingGarbage(int64(r.cfg.Seed) + int64(r.session.Peer().LastSeq))
	r.driver.Invalidate()

	r.logger.Debug("applied garbage", slog.Int("rows", count))
}

// handleLock publishes the lock event (and any garbage attack), advances the
// snapshot cadence, and settles the match if we topped out.
func (r *Runner) handleLock(ctx context.Context, res engine.StepResult) error {
	lock := r.session.BuildPieceLocked(r.state, res)
	if err := r.publish(ctx, protocol.EventPieceLocked, lock); err != nil {
		return err
	}

	if res.SentGarbage > 0 {
		if err := r.publish(ctx, protocol.EventGarbageSent, r.session.BuildGarbageSent(res.SentGarbage)); err != nil {
			return err
		}
	}

	r.cadence.ObserveLock()
	if r.cadence.Due() {
		r.recordSnapshot(ctx)
	}

	if r.state.GameOver {
		// We topped out; the peer wins.
		return r.finish(ctx, r.cfg.PeerID, model.EndReasonTopOut)
	}
	return nil
}

// recordSnapshot captures both sides' current view. Failure is logged and
// tolerated; snapshots are recovery aids, not correctness requirements.
func (r *Runner) recordSnapshot(ctx context.Context) {
	peer := r.session.Peer()
	sides := map[model.PlayerID]model.SideSnapshot{
		r.cfg.SelfID: {
			Board:          r.state.Board,
			Score:          r.state.Score,
			TotalLines:     r.state.TotalLines,
			PendingGarbage: r.state.PendingGarbage,
			Seq:            r.session.Seq(),
			GameOver:       r.state.GameOver,
		},
		r.cfg.PeerID: {
			Board:      peer.Board,
			Score:      peer.Score,
			TotalLines: peer.TotalLines,
			Seq:        peer.LastSeq,
			GameOver:   peer.GameOver,
		},
	}

	if _, err := r.snapshots.Record(ctx, r.cfg.MatchID, sides); err != nil {
		r.logger.Warn("snapshot failed", slog.Any("error", err))
		return
	}
	r.cadence.Taken()
}

// observePeer marks the peer alive and clears any recorded countdown.
func (r *Runner) observePeer(ctx context.Context) {
	hadDeadline := !r.monitor.Deadline(r.cfg.PeerID).IsZero()
	r.monitor.Observe(r.cfg.PeerID)
	if hadDeadline {
		if err := r.matches.ClearDisconnectDeadline(ctx, r.cfg.MatchID, r.cfg.PeerID); err != nil {
			r.logger.Warn("failed to clear disconnect deadline", slog.Any("error", err))
		}
	}
}

// finish settles the match once. The match controller makes the settle
// idempotent across both sides.
func (r *Runner) finish(ctx context.Context, winnerID model.PlayerID, reason model.EndReason) error {
	if r.finished {
		return nil
	}
	r.finished = true

	if _, err := r.matches.Finish(ctx, r.cfg.MatchID, winnerID, reason); err != nil {
		return err
	}
	r.logger.Info("match settled",
		slog.String("winner_id", string(winnerID)),
		slog.String("reason", string(reason)))
	return nil
}

func (r *Runner) publish(ctx context.Context, eventType protocol.EventType, payload any) error {
	data, err := protocol.Encode(r.cfg.MatchID, eventType, payload)
	if err != nil {
		return err
	}
	return r.transport.Publish(ctx, r.cfg.MatchID, data)
}
