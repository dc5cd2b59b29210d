package internal

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultRoundDuration  = 60 * time.Second
	RoundGraceDelay       = 3 * time.Second
	MaxAttemptsPerRound   = 3
	MaxPlayersPerSession  = 8
	MinPlayersToStart     = 2
	PointsForCorrectGuess = 10
	MinQuestionLength     = 5
	MaxNameLength         = 20
	SessionCodeLength     = 6
)

// RoundState is the per-session round state machine. Transitions are owned by
// the round controller; everything else only mirrors it.
type RoundState string

const (
	StateWaiting    RoundState = "waiting"
	StateInProgress RoundState = "in-progress"
	StateEnded      RoundState = "ended"
)

// Conn is the write side of a player's duplex channel. *websocket.Conn
// satisfies it; tests substitute an in-memory fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Player struct {
	Id      string   `json:"id"`
	Conn    Conn     `json:"-"`
	Session *Session `json:"-"` // Avoid circular reference in JSON
	Name    string   `json:"name"`
	Score   int      `json:"score"`

	// Round state, meaningful only while a round is in progress or ended
	Attempts     int  `json:"attempts"`
	HasAnswered  bool `json:"has_answered"`
	IsGameMaster bool `json:"is_game_master"`

	// LastMasterRound records the round this player last posed the question for.
	LastMasterRound int `json:"-"`

	// IsConnected and DisconnectedAt are guarded by the session's lock, like
	// every other field the reaper and roster snapshots read. Mu guards only
	// Conn, serializing writes on the transport.
	IsConnected    bool      `json:"is_connected"`
	JoinedAt       time.Time `json:"joined_at"`
	DisconnectedAt time.Time `json:"-"`

	Mu sync.Mutex `json:"-"`
}

type Session struct {
	Id      string
	Players map[string]*Player

	// JoinOrder holds player ids in join order. MasterIndex is the current
	// game master's position in it; rotation advances the index with
	// wraparound.
	JoinOrder   []string
	MasterIndex int

	// Round state
	State       RoundState
	Question    string
	Answer      string // never leaves the authority until the round ends
	RoundNumber int

	// RoundMasterId is the player who posed the current round's question.
	// If they leave mid-round the promoted master already is the "next by
	// join order", so end-of-round rotation must not advance again.
	RoundMasterId string

	LastResult *RoundResult
	LastActive time.Time

	// Concurrency control: all mutation for this session goes through Mu.
	Mu sync.RWMutex

	Context context.Context
	Cancel  context.CancelFunc
}

// RoundResult is immutable once created, superseded by the next round.
type RoundResult struct {
	RoundNumber int              `json:"round_number"`
	Winner      *PlayerSnapshot  `json:"winner,omitempty"`
	Answer      string           `json:"answer"`
	Scores      []PlayerSnapshot `json:"scores"`
	EndedAt     time.Time        `json:"ended_at"`
}

// MasterPlayer returns the current game master, nil if the session is empty.
// Caller must hold the session lock.
func (s *Session) MasterPlayer() *Player {
	for _, p := range s.Players {
		if p != nil && p.IsGameMaster {
			return p
		}
	}
	return nil
}

// Roster builds public snapshots in join order. Caller must hold the lock.
func (s *Session) Roster() []PlayerSnapshot {
	roster := make([]PlayerSnapshot, 0, len(s.Players))
	for _, id := range s.JoinOrder {
		if p := s.Players[id]; p != nil {
			roster = append(roster, CreatePlayerSnapshot(p))
		}
	}
	return roster
}

// ResetForNewRound clears per-round player state, never scores. Caller must
// hold the lock.
func (s *Session) ResetForNewRound() {
	for _, p := range s.Players {
		if p != nil {
			p.ResetRoundState()
		}
	}
}

// Snapshot captures the broadcastable view of the session. The answer is
// deliberately absent. Caller must hold at least a read lock.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		Id:          s.Id,
		State:       s.State,
		RoundNumber: s.RoundNumber,
		Players:     s.Roster(),
		LastResult:  s.LastResult,
	}
	if s.State != StateWaiting {
		snap.Question = s.Question
	}
	if master := s.MasterPlayer(); master != nil {
		snap.MasterId = master.Id
		snap.MasterName = master.Name
	}
	return snap
}
