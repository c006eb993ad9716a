package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.GuestPlayerTTL = time.Hour
	cfg.MatchTTL = time.Hour
	cfg.SnapshotTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		IsGuest:     false,
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

func (s *StorageSuite) TestGuestPlayerTTL() {
	guest := &model.Player{ID: "guest-1", IsGuest: true}
	registered := &model.Player{ID: "registered-1", IsGuest: false}

	_ = s.storage.SavePlayer(s.ctx, guest)
	_ = s.storage.SavePlayer(s.ctx, registered)

	guestTTL := s.mini.TTL(playerKey(guest.ID))
	registeredTTL := s.mini.TTL(playerKey(registered.ID))

	s.True(guestTTL > 0, "Guest player should have TTL")
	s.Equal(time.Duration(0), registeredTTL, "Registered player should not have TTL")
}

// Match tests

func (s *StorageSuite) TestSaveAndGetMatch() {
	match := &model.Match{
		ID:        "match-1",
		Code:      "ABC234",
		Status:    model.MatchStatusWaiting,
		HostID:    "player-1",
		Seed:      1234,
		CreatedAt: time.Now().UTC(),
	}

	err := s.storage.SaveMatch(s.ctx, match)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetMatch(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(match.Code, retrieved.Code)
	s.Equal(int32(1234), retrieved.Seed)
}

func (s *StorageSuite) TestGetMatchNotFound() {
	_, err := s.storage.GetMatch(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
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

func (s *StorageSuite) TestDeleteMatchClearsAllKeys() {
	match := &model.Match{ID: "match-1", Code: "ABC234"}
	_ = s.storage.SaveMatch(s.ctx, match)
	_ = s.storage.SaveSnapshot(s.ctx, &model.MatchSnapshot{MatchID: "match-1", Version: 1})

	err := s.storage.DeleteMatch(s.ctx, "match-1")
	s.Require().NoError(err)

	_, err = s.storage.GetMatch(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrMatchNotFound)

	exists, err := s.storage.MatchCodeExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.storage.LatestSnapshot(s.ctx, "match-1")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}

// Snapshot tests

func (s *StorageSuite) TestSaveAndGetSnapshot() {
	board := engine.NewBoard()
	board[19][3] = engine.CellGarbage

	snapshot := &model.MatchSnapshot{
		MatchID: "match-1",
		Version: 7,
		Sides: map[model.PlayerID]model.SideSnapshot{
			"player-1": {Board: board, Score: 400, TotalLines: 4, Seq: 9},
			"player-2": {Board: engine.NewBoard(), Score: 200, Seq: 6, PendingGarbage: 2},
		},
		TakenAt: time.Now().UTC(),
	}

	err := s.storage.SaveSnapshot(s.ctx, snapshot)
	s.Require().NoError(err)

	retrieved, err := s.storage.LatestSnapshot(s.ctx, "match-1")
	s.Require().NoError(err)
	s.Equal(uint64(7), retrieved.Version)
	s.Equal(engine.CellGarbage, retrieved.Sides["player-1"].Board[19][3])
	s.Equal(2, retrieved.Sides["player-2"].PendingGarbage)
	s.True(retrieved.Validate())
}

func (s *StorageSuite) TestSnapshotHasTTL() {
	_ = s.storage.SaveSnapshot(s.ctx, &model.MatchSnapshot{MatchID: "match-1", Version: 1})
	s.True(s.mini.TTL(snapshotKey("match-1")) > 0, "Snapshot should expire")
}

func (s *StorageSuite) TestSnapshotNotFound() {
	_, err := s.storage.LatestSnapshot(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSnapshotNotFound)
}
