package runner

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/blockduel/blockduel-go/internal/ai"
	"github.com/blockduel/blockduel-go/internal/dependencies/mocks"
	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/protocol"
	"github.com/blockduel/blockduel-go/internal/services/match"
	"github.com/blockduel/blockduel-go/internal/services/snapshot"
	"github.com/blockduel/blockduel-go/internal/storage/memory"
	"github.com/blockduel/blockduel-go/internal/testutil"
	transportmemory "github.com/blockduel/blockduel-go/internal/transport/memory"
)

type RunnerSuite struct {
	suite.Suite
	ctx       context.Context
	storage   *memory.Storage
	clock     *mocks.MockClock
	transport *transportmemory.Transport
	matches   *match.Controller
	snapshots *snapshot.Service
	runner    *Runner
	events    <-chan []byte
	cancelSub func()
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.transport = transportmemory.New(testutil.NopLogger())
	s.matches = match.NewController(s.storage, s.clock, mocks.NewMockRandom())
	s.snapshots = snapshot.NewService(s.storage, s.clock, testutil.NopLogger())

	// Seed a playing match directly; the controller path is covered in the
	// match package's own tests.
	s.Require().NoError(s.storage.SaveMatch(s.ctx, &model.Match{
		ID:      "match-1",
		Code:    "ABC234",
		Status:  model.MatchStatusPlaying,
		HostID:  "bot",
		GuestID: "human",
		Seed:    42,
	}))

	diff := ai.Tier(ai.NumTiers)
	diff.MistakeChance = 0
	diff.LineChance = 1

	s.runner = New(
		Config{
			MatchID:              "match-1",
			SelfID:               "bot",
			PeerID:               "human",
			Seed:                 42,
			Difficulty:           diff,
			HeartbeatInterval:    5 * time.Second,
			SilenceThreshold:     15 * time.Second,
			GraceWindow:          40 * time.Second,
			SnapshotLockInterval: 2,
			SnapshotTimeInterval: time.Hour,
		},
		s.transport,
		s.matches,
		s.snapshots,
		s.clock,
		rand.New(rand.NewPCG(7, 7)),
		testutil.NopLogger(),
	)

	events, cancel, err := s.transport.Subscribe(s.ctx, "match-1")
	s.Require().NoError(err)
	s.events = events
	s.cancelSub = cancel
}

func (s *RunnerSuite) TearDownTest() {
	if s.cancelSub != nil {
		s.cancelSub()
	}
}

// nextEvent decodes the next published envelope, skipping nothing.
func (s *RunnerSuite) nextEvent() (protocol.Envelope, any) {
	select {
	case data := <-s.events:
		env, payload, err := protocol.Decode(data)
		s.Require().NoError(err)
		return env, payload
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for published event")
		return protocol.Envelope{}, nil
	}
}

// tickUntilLock runs think ticks until the runner locks exactly one piece.
// The outbound seq advances on the lock itself, so the helper never races
// the hub goroutine; it then blocks until that lock event is delivered.
func (s *RunnerSuite) tickUntilLock() protocol.PieceLockedPayload {
	before := s.runner.Session().Seq()
	for i := 0; i < 100; i++ {
		s.Require().NoError(s.runner.ThinkTick(s.ctx))
		if s.runner.Session().Seq() == before {
			continue
		}
		for {
			_, payload := s.nextEvent()
			if p, ok := payload.(protocol.PieceLockedPayload); ok && p.Seq == before+1 {
				return p
			}
		}
	}
	s.FailNow("runner never locked a piece")
	return protocol.PieceLockedPayload{}
}

func (s *RunnerSuite) peerLock(seq uint64, gameOver bool) []byte {
	data, err := protocol.Encode("match-1", protocol.EventPieceLocked, protocol.PieceLockedPayload{
		PlayerID:   "human",
		Seq:        seq,
		BoardFixed: engine.NewBoard(),
		Score:      100,
		GameOver:   gameOver,
	})
	s.Require().NoError(err)
	return data
}

func (s *RunnerSuite) TestThinkTickPublishesLock() {
	lock := s.tickUntilLock()

	s.Equal(model.PlayerID("bot"), lock.PlayerID)
	s.Equal(uint64(1), lock.Seq)
	s.True(lock.BoardFixed.Valid())
	s.False(lock.GameOver)
}

func (s *RunnerSuite) TestPeerEventsUpdateMirror() {
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, s.peerLock(1, false)))

	peer := s.runner.Session().Peer()
	s.Equal(uint64(1), peer.LastSeq)
	s.Equal(100, peer.Score)
	s.False(s.runner.Finished())
}

func (s *RunnerSuite) TestPeerTopOutSettlesMatch() {
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, s.peerLock(1, true)))

	s.True(s.runner.Finished())
	settled, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusEnded, settled.Status)
	s.Equal(model.PlayerID("bot"), settled.WinnerID)
	s.Equal(model.EndReasonTopOut, settled.EndReason)
}

func (s *RunnerSuite) TestGarbageAppliesAtNextThinkTick() {
	data, err := protocol.Encode("match-1", protocol.EventGarbageSent, protocol.GarbageSentPayload{
		FromPlayerID: "human",
		ToPlayerID:   "bot",
		Seq:          1,
		Count:        2,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, data))

	s.Require().NoError(s.runner.ThinkTick(s.ctx))

	st := s.runner.State()
	s.Zero(st.PendingGarbage, "garbage should be applied, not pending")
	garbageRows := 0
	for r := 0; r < engine.Rows; r++ {
		for c := 0; c < engine.Cols; c++ {
			if st.Board[r][c] == engine.CellGarbage {
				garbageRows++
				break
			}
		}
	}
	s.Equal(2, garbageRows)
}

func (s *RunnerSuite) TestResyncRequestAnswered() {
	data, err := protocol.Encode("match-1", protocol.EventResyncRequest, protocol.ResyncRequestPayload{
		RequesterID: "human",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, data))

	env, payload := s.nextEvent()
	s.Equal(protocol.EventResyncState, env.Type)
	state, ok := payload.(protocol.ResyncStatePayload)
	s.Require().True(ok)
	s.Equal(model.PlayerID("bot"), state.PlayerID)
	s.True(state.BoardFixed.Valid())
}

func (s *RunnerSuite) TestHeartbeatTickPublishesLiveness() {
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))

	env, payload := s.nextEvent()
	s.Equal(protocol.EventHeartbeat, env.Type)
	hb, ok := payload.(protocol.HeartbeatPayload)
	s.Require().True(ok)
	s.Equal(model.PlayerID("bot"), hb.PlayerID)
}

func (s *RunnerSuite) TestSilentPeerTimesOut() {
	// First tick seeds the peer's lastSeen.
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))

	// Silence past the threshold starts the countdown.
	s.clock.Advance(20 * time.Second)
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))
	s.False(s.runner.Finished())

	stored, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.False(stored.DisconnectDeadline["human"].IsZero(), "countdown should be recorded")

	// Grace window expires.
	s.clock.Advance(41 * time.Second)
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))

	s.True(s.runner.Finished())
	settled, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusEnded, settled.Status)
	s.Equal(model.PlayerID("bot"), settled.WinnerID)
	s.Equal(model.EndReasonTimeout, settled.EndReason)
}

func (s *RunnerSuite) TestPeerEventCancelsCountdown() {
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))
	s.clock.Advance(20 * time.Second)
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))

	stored, _ := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().False(stored.DisconnectDeadline["human"].IsZero())

	// The peer comes back.
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, s.peerLock(1, false)))

	stored, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.NotContains(stored.DisconnectDeadline, model.PlayerID("human"))

	s.clock.Advance(50 * time.Second)
	s.Require().NoError(s.runner.HeartbeatTick(s.ctx))
	s.False(s.runner.Finished(), "fresh countdown must not have expired yet")
}

func (s *RunnerSuite) TestSnapshotRecordedOnCadence() {
	s.tickUntilLock()
	s.tickUntilLock()

	snap, err := s.snapshots.Latest(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(uint64(1), snap.Version)
	s.Contains(snap.Sides, model.PlayerID("bot"))
	s.Contains(snap.Sides, model.PlayerID("human"))
}

func (s *RunnerSuite) TestGravityTickForcesDescent() {
	before := s.runner.State().Pos.Row
	s.Require().NoError(s.runner.GravityTick(s.ctx))
	s.Equal(before+1, s.runner.State().Pos.Row)
}

func (s *RunnerSuite) TestSnapshotTimeFallbackWithoutLocks() {
	// No piece has locked, but enough wall clock has passed that the next
	// gravity tick must still capture a snapshot.
	s.clock.Advance(2 * time.Hour)
	s.Require().NoError(s.runner.GravityTick(s.ctx))

	snap, err := s.snapshots.Latest(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(uint64(1), snap.Version)
}

func (s *RunnerSuite) TestRequestResyncBroadcasts() {
	s.Require().NoError(s.runner.RequestResync(s.ctx))

	env, payload := s.nextEvent()
	s.Equal(protocol.EventResyncRequest, env.Type)
	req, ok := payload.(protocol.ResyncRequestPayload)
	s.Require().True(ok)
	s.Equal(model.PlayerID("bot"), req.RequesterID)
}

func (s *RunnerSuite) TestOwnEventsIgnored() {
	lock := s.tickUntilLock()

	// The transport echoes our own event back; it must not disturb the
	// peer mirror.
	data, err := protocol.Encode("match-1", protocol.EventPieceLocked, lock)
	s.Require().NoError(err)
	s.Require().NoError(s.runner.HandleEnvelope(s.ctx, data))

	s.Zero(s.runner.Session().Peer().LastSeq)
}
