package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		IsGuest:     true,
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal(player.DisplayName, retrieved.DisplayName)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice"}
	_ = s.storage.SavePlayer(s.ctx, player)

	err := s.storage.DeletePlayer(s.ctx, "player-1")
	s.Require().NoError(err)

	_, err = s.storage.GetPlayer(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Match tests

func (s *StorageSuite) TestSaveAndGetMatch() {
	match := &model.Match{
		ID:        "match-1",
		Code:      "ABC234",
		Status:    model.MatchStatusWaiting,
		HostID:    "player-1",
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveMatch(s.ctx, match)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(match.Code, retrieved.Code)
	s.Equal(model.MatchStatusWaiting, retrieved.Status)
}

func (s *StorageSuite) TestGetMatchByCode() {
	match := &model.Match{ID: "match-1", Code: "ABC234", HostID: "player-1"}
	_ = s.storage.SaveMatch(s.ctx, match)

	retrieved, err := s.storage.GetMatchByCode(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.MatchID("match-1"), retrieved.ID)

	_, err = s.storage.GetMatchByCode(s.ctx, "ZZZ999")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestMatchCodeExists() {
	match := &model.Match{ID: "match-1", Code: "ABC234"}
	_ = s.storage.SaveMatch(s.ctx, match)

	exists, err := s.storage.MatchCodeExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.MatchCodeExists(s.ctx, "ZZZ999")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestDeleteMatchClearsCodeIndex() {
	match := &model.Match{ID: "match-1", Code: "ABC234"}
	_ = s.storage.SaveMatch(s.ctx, match)

	err := s.storage.DeleteMatch(s.ctx, "match-1")
	s.Require().NoError(err)

	_, err = s.storage.GetMatch(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrMatchNotFound)

	exists, err := s.storage.MatchCodeExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)
}

// Snapshot tests

func (s *StorageSuite) TestSaveAndGetSnapshot() {
	snapshot := &model.MatchSnapshot{
		MatchID: "match-1",
		Version: 3,
		Sides: map[model.PlayerID]model.SideSnapshot{
			"player-1": {Board: engine.NewBoard(), Score: 300, Seq: 5},
			"player-2": {Board: engine.NewBoard(), Score: 100, Seq: 4},
		},
		TakenAt: time.Now(),
	}

	err := s.storage.SaveSnapshot(s.ctx, snapshot)
	s.Require().NoError(err)

	retrieved, err := s.storage.LatestSnapshot(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(uint64(3), retrieved.Version)
	s.Equal(300, retrieved.Sides["player-1"].Score)
}

func (s *StorageSuite) TestSnapshotOverwritesPrevious() {
	older := &model.MatchSnapshot{MatchID: "match-1", Version: 1}
	newer := &model.MatchSnapshot{MatchID: "match-1", Version: 2}

	_ = s.storage.SaveSnapshot(s.ctx, older)
	_ = s.storage.SaveSnapshot(s.ctx, newer)

	retrieved, err := s.storage.LatestSnapshot(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(uint64(2), retrieved.Version)
}

func (s *StorageSuite) TestSnapshotNotFound() {
	_, err := s.storage.LatestSnapshot(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}

func (s *StorageSuite) TestDeleteSnapshot() {
	_ = s.storage.SaveSnapshot(s.ctx, &model.MatchSnapshot{MatchID: "match-1", Version: 1})

	err := s.storage.DeleteSnapshot(s.ctx, "match-1")
	s.Require().NoError(err)

	_, err = s.storage.LatestSnapshot(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}
