package protocol

import (
	"log/slog"

	"github.com/blockduel/blockduel-go/internal/engine"
	"github.com/blockduel/blockduel-go/internal/model"
)

// PeerView is the local mirror of the opponent's state, rebuilt wholesale
// from each accepted lock event.
type PeerView struct {
	Board      engine.Board
	Score      int
	TotalLines int
	GameOver   bool
	LastSeq    uint64
}

// Session holds one side's protocol state for a match: the outbound sequence
// counter, the last applied sequence number per inbound stream, the mirror of
// the opponent, and garbage received but not yet applied. It is owned by a
// single goroutine (the runner loop) and needs no locking.
type Session struct {
	matchID model.MatchID
	selfID  model.PlayerID
	peerID  model.PlayerID

	seq             uint64
	peer            PeerView
	incomingGarbage int
	lastGarbageSeq  uint64

	logger *slog.Logger
}

// NewSession creates a protocol session scoped to one match lifetime.
func NewSession(matchID model.MatchID, selfID, peerID model.PlayerID, logger *slog.Logger) *Session {
	return &Session{
		matchID: matchID,
		selfID:  selfID,
		peerID:  peerID,
		peer:    PeerView{Board: engine.NewBoard()},
		logger: logger.With(
			slog.String("component", "protocol-session"),
			slog.String("match_id", string(matchID)),
			slog.String("player_id", string(selfID)),
		),
	}
}

// NextSeq increments and returns the outbound sequence number.
func (s *Session) NextSeq() uint64 {
	s.seq++
	return s.seq
}

// Seq returns the current outbound sequence number without advancing it.
func (s *Session) Seq() uint64 {
	return s.seq
}

// Peer returns the current mirror of the opponent.
func (s *Session) Peer() PeerView {
	return s.peer
}

// ApplyPieceLocked applies an opponent lock event. Events from self, stale
// events, and duplicates are dropped silently; the event's full board
// replaces the mirror wholesale, which is what makes loss self-healing.
func (s *Session) ApplyPieceLocked(p PieceLockedPayload) bool {
	if p.PlayerID != s.peerID {
		return false
	}
	if p.Seq <= s.peer.LastSeq {
		s.logger.Debug("dropping stale piece_locked",
			slog.Uint64("seq", p.Seq),
			slog.Uint64("last_applied", s.peer.LastSeq))
		return false
	}
	s.peer = PeerView{
		Board:      p.BoardFixed,
		Score:      p.Score,
		TotalLines: p.LinesClearedTotal,
		GameOver:   p.GameOver,
		LastSeq:    p.Seq,
	}
	return true
}

// ApplyGarbageSent queues garbage addressed to this side. The count is
// applied lazily at the next local gravity tick via TakeIncomingGarbage.
// Garbage events share the peer's lock-stream sequence numbers, so replays
// and older deliveries are dropped against the last applied garbage seq.
func (s *Session) ApplyGarbageSent(p GarbageSentPayload) bool {
	if p.ToPlayerID != s.selfID || p.FromPlayerID != s.peerID {
		return false
	}
	if p.Seq <= s.lastGarbageSeq {
		s.logger.Debug("dropping stale garbage_sent",
			slog.Uint64("seq", p.Seq),
			slog.Uint64("last_applied", s.lastGarbageSeq))
		return false
	}
	s.incomingGarbage += p.Count
	s.lastGarbageSeq = p.Seq
	return true
}

// TakeIncomingGarbage drains and returns the queued garbage count.
func (s *Session) TakeIncomingGarbage() int {
	n := s.incomingGarbage
	s.incomingGarbage = 0
	return n
}

// ApplyResyncState adopts the peer's full state after a reconnect, but only
// if it is not older than what this side already holds.
func (s *Session) ApplyResyncState(p ResyncStatePayload) bool {
	if p.PlayerID != s.peerID {
		return false
	}
	if p.Seq < s.peer.LastSeq {
		return false
	}
	s.peer = PeerView{
		Board:    p.BoardFixed,
		Score:    p.Score,
		GameOver: p.GameOver,
		LastSeq:  p.Seq,
	}
	return true
}

// BuildPieceLocked assembles the lock event for a local StepDown that
// reported Locked, advancing the outbound sequence number.
func (s *Session) BuildPieceLocked(st engine.State, res engine.StepResult) PieceLockedPayload {
	return PieceLockedPayload{
		PlayerID:          s.selfID,
		Seq:               s.NextSeq(),
		BoardFixed:        st.Board,
		Score:             st.Score,
		LinesClearedTotal: st.TotalLines,
		SentGarbage:       res.SentGarbage,
		GameOver:          st.GameOver,
	}
}

// BuildGarbageSent assembles the attack event accompanying a lock whose
// clear sent garbage. It reuses the lock event's sequence number so the two
// are deduplicated as a unit.
func (s *Session) BuildGarbageSent(count int) GarbageSentPayload {
	return GarbageSentPayload{
		FromPlayerID: s.selfID,
		ToPlayerID:   s.peerID,
		Seq:          s.seq,
		Count:        count,
	}
}

// BuildResyncState assembles the full-state reply to a resync request.
func (s *Session) BuildResyncState(st engine.State) ResyncStatePayload {
	return ResyncStatePayload{
		PlayerID:       s.selfID,
		Seq:            s.seq,
		BoardFixed:     st.Board,
		Score:          st.Score,
		PendingGarbage: st.PendingGarbage,
		GameOver:       st.GameOver,
	}
}
