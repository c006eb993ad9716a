package match

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/blockduel/blockduel-go/internal/dependencies/mocks"
	"github.com/blockduel/blockduel-go/internal/model"
	"github.com/blockduel/blockduel-go/internal/storage/memory"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random)
	s.ctx = context.Background()
}

// createPlaying walks a match through create/join/ready into playing state.
func (s *ControllerSuite) createPlaying() *model.Match {
	s.random.QueueString("MATCH00000ID", "ABC234")
	s.random.QueueSeed(777)

	match, err := s.controller.Create(s.ctx, "host")
	s.Require().NoError(err)
	_, err = s.controller.Join(s.ctx, match.Code, "guest")
	s.Require().NoError(err)
	_, err = s.controller.SetReady(s.ctx, match.ID, "host")
	s.Require().NoError(err)
	playing, err := s.controller.SetReady(s.ctx, match.ID, "guest")
	s.Require().NoError(err)
	return playing
}

func (s *ControllerSuite) TestCreateMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")

	match, err := s.controller.Create(s.ctx, "host")
	s.Require().NoError(err)

	s.Equal(model.MatchID("MATCH00000ID"), match.ID)
	s.Equal(model.MatchCode("ABC234"), match.Code)
	s.Equal(model.MatchStatusWaiting, match.Status)
	s.Equal(model.PlayerID("host"), match.HostID)
	s.Empty(match.GuestID)
	s.Equal(s.clock.Now(), match.CreatedAt)

	stored, err := s.storage.GetMatchByCode(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(match.ID, stored.ID)
}

func (s *ControllerSuite) TestCreateRetriesOnCodeCollision() {
	existing := &model.Match{ID: "other", Code: "ABC234"}
	s.Require().NoError(s.storage.SaveMatch(s.ctx, existing))

	// First draw collides, second succeeds.
	s.random.QueueString("MATCH00000ID", "ABC234", "XYZ789")

	match, err := s.controller.Create(s.ctx, "host")
	s.Require().NoError(err)
	s.Equal(model.MatchCode("XYZ789"), match.Code)
}

func (s *ControllerSuite) TestJoinMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, err := s.controller.Create(s.ctx, "host")
	s.Require().NoError(err)

	joined, err := s.controller.Join(s.ctx, match.Code, "guest")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("guest"), joined.GuestID)
	s.Equal(model.MatchStatusWaiting, joined.Status)
}

func (s *ControllerSuite) TestJoinUnknownCode() {
	_, err := s.controller.Join(s.ctx, "ZZZ999", "guest")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestJoinFullMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")
	_, err := s.controller.Join(s.ctx, match.Code, "guest")
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, match.Code, "third")
	s.ErrorIs(err, model.ErrMatchFull)
}

func (s *ControllerSuite) TestHostCannotJoinOwnMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")

	_, err := s.controller.Join(s.ctx, match.Code, "host")
	s.ErrorIs(err, model.ErrAlreadyInMatch)
}

func (s *ControllerSuite) TestRejoiningGuestReported() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")
	_, err := s.controller.Join(s.ctx, match.Code, "guest")
	s.Require().NoError(err)

	_, err = s.controller.Join(s.ctx, match.Code, "guest")
	s.ErrorIs(err, model.ErrAlreadyInMatch)
}

func (s *ControllerSuite) TestBothReadyStartsMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	s.random.QueueSeed(777)

	match, _ := s.controller.Create(s.ctx, "host")
	_, err := s.controller.Join(s.ctx, match.Code, "guest")
	s.Require().NoError(err)

	afterHost, err := s.controller.SetReady(s.ctx, match.ID, "host")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusWaiting, afterHost.Status)
	s.True(afterHost.HostReady)
	s.Zero(afterHost.Seed, "seed must not be drawn before both are ready")

	afterGuest, err := s.controller.SetReady(s.ctx, match.ID, "guest")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusPlaying, afterGuest.Status)
	s.Equal(int32(777), afterGuest.Seed)
	s.Equal(s.clock.Now().Add(StartCountdown), afterGuest.StartAt)
}

func (s *ControllerSuite) TestReadyWithoutGuestKeepsWaiting() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")

	after, err := s.controller.SetReady(s.ctx, match.ID, "host")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusWaiting, after.Status)
}

func (s *ControllerSuite) TestReadyFromOutsiderRejected() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")

	_, err := s.controller.SetReady(s.ctx, match.ID, "stranger")
	s.ErrorIs(err, model.ErrNotInMatch)
}

func (s *ControllerSuite) TestFinishSettlesMatch() {
	playing := s.createPlaying()

	ended, err := s.controller.Finish(s.ctx, playing.ID, "host", model.EndReasonTopOut)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusEnded, ended.Status)
	s.Equal(model.PlayerID("host"), ended.WinnerID)
	s.Equal(model.EndReasonTopOut, ended.EndReason)
}

func (s *ControllerSuite) TestFinishIsIdempotent() {
	playing := s.createPlaying()

	first, err := s.controller.Finish(s.ctx, playing.ID, "host", model.EndReasonTopOut)
	s.Require().NoError(err)

	// Second settle (the losing side reporting the same race) returns the
	// stored result without changing the winner.
	second, err := s.controller.Finish(s.ctx, playing.ID, "guest", model.EndReasonForfeit)
	s.Require().NoError(err)
	s.Equal(first.WinnerID, second.WinnerID)
	s.Equal(first.EndReason, second.EndReason)
}

func (s *ControllerSuite) TestFinishWaitingMatchRejected() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")

	_, err := s.controller.Finish(s.ctx, match.ID, "host", model.EndReasonForfeit)
	s.ErrorIs(err, model.ErrMatchNotPlaying)
}

func (s *ControllerSuite) TestAbortWaitingMatch() {
	s.random.QueueString("MATCH00000ID", "ABC234")
	match, _ := s.controller.Create(s.ctx, "host")

	aborted, err := s.controller.Abort(s.ctx, match.ID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusAborted, aborted.Status)

	_, err = s.controller.Abort(s.ctx, match.ID)
	s.ErrorIs(err, model.ErrMatchEnded)
}

func (s *ControllerSuite) TestDisconnectDeadlineRoundTrip() {
	playing := s.createPlaying()
	deadline := s.clock.Now().Add(40 * time.Second)

	err := s.controller.SetDisconnectDeadline(s.ctx, playing.ID, "guest", deadline)
	s.Require().NoError(err)

	stored, err := s.controller.Get(s.ctx, playing.ID)
	s.Require().NoError(err)
	s.Equal(deadline, stored.DisconnectDeadline["guest"])

	err = s.controller.ClearDisconnectDeadline(s.ctx, playing.ID, "guest")
	s.Require().NoError(err)

	stored, err = s.controller.Get(s.ctx, playing.ID)
	s.Require().NoError(err)
	s.NotContains(stored.DisconnectDeadline, model.PlayerID("guest"))
}
