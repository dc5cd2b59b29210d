package game

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/quizrush-backend/internal"
	"github.com/scythe504/quizrush-backend/internal/utils"
)

// =============================================================================
// SESSION ORCHESTRATOR
// =============================================================================

// Config tunes per-deployment behavior; zero values fall back to the model
// defaults.
type Config struct {
	RoundDuration  time.Duration
	GraceDelay     time.Duration
	MaxPlayers     int
	IdleTimeout    time.Duration
	ReconnectGrace time.Duration
}

func (c Config) withDefaults() Config {
	if c.RoundDuration <= 0 {
		c.RoundDuration = internal.DefaultRoundDuration
	}
	if c.GraceDelay <= 0 {
		c.GraceDelay = internal.RoundGraceDelay
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = internal.MaxPlayersPerSession
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Minute
	}
	if c.ReconnectGrace <= 0 {
		c.ReconnectGrace = 2 * time.Minute
	}
	return c
}

// Orchestrator owns every session and serializes all mutation for a given
// session through that session's lock. Operations on different sessions run
// fully in parallel; no operation ever holds two sessions' locks.
type Orchestrator struct {
	mu       sync.RWMutex
	sessions map[string]*internal.Session

	clock  clockwork.Clock
	timers *TimerService
	cfg    Config
}

func NewOrchestrator(clock clockwork.Clock, cfg Config) *Orchestrator {
	return &Orchestrator{
		sessions: make(map[string]*internal.Session),
		clock:    clock,
		timers:   NewTimerService(clock),
		cfg:      cfg.withDefaults(),
	}
}

// CreateSession allocates a session with a fresh shareable code and seats the
// creating player as its first member and game master.
func (o *Orchestrator) CreateSession(name string, conn internal.Conn) (*internal.Session, *internal.Player, error) {
	name = utils.SanitizeName(name)
	if name == "" {
		return nil, nil, internal.ErrInvalidName
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &internal.Session{
		Players:     make(map[string]*internal.Player),
		JoinOrder:   make([]string, 0, o.cfg.MaxPlayers),
		State:       internal.StateWaiting,
		RoundNumber: 1,
		LastActive:  o.clock.Now(),
		Context:     ctx,
		Cancel:      cancel,
	}

	o.mu.Lock()
	for {
		id := utils.GenerateSessionCode(internal.SessionCodeLength)
		if _, taken := o.sessions[id]; !taken {
			session.Id = id
			o.sessions[id] = session
			break
		}
	}
	o.mu.Unlock()

	player, err := o.AddPlayer(session.Id, name, conn)
	if err != nil {
		// cannot happen on a fresh session, but keep the map consistent
		o.removeSession(session.Id)
		return nil, nil, err
	}

	log.Info().Str("session_id", session.Id).Str("player_id", player.Id).
		Str("player", player.Name).Msg("session created")
	return session, player, nil
}

// Session looks up a session by id.
func (o *Orchestrator) Session(id string) (*internal.Session, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	session, ok := o.sessions[id]
	if !ok {
		return nil, internal.ErrSessionNotFound
	}
	return session, nil
}

// ListSessions summarizes every session for the lobby view.
func (o *Orchestrator) ListSessions() []internal.SessionSummary {
	o.mu.RLock()
	sessions := make([]*internal.Session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.mu.RUnlock()

	summaries := make([]internal.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		s.Mu.RLock()
		summary := internal.SessionSummary{
			Id:          s.Id,
			PlayerCount: len(s.Players),
			State:       s.State,
		}
		if master := s.MasterPlayer(); master != nil {
			summary.MasterName = master.Name
		}
		s.Mu.RUnlock()
		summaries = append(summaries, summary)
	}
	return summaries
}

// Touch refreshes the session's idle clock. Caller must hold the session lock.
func (o *Orchestrator) touchLocked(s *internal.Session) {
	s.LastActive = o.clock.Now()
}

func (o *Orchestrator) removeSession(id string) {
	o.mu.Lock()
	session, ok := o.sessions[id]
	if ok {
		delete(o.sessions, id)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	o.timers.CancelSession(id)

	session.Mu.Lock()
	if session.Cancel != nil {
		session.Cancel()
	}
	players := make([]*internal.Player, 0, len(session.Players))
	for _, p := range session.Players {
		players = append(players, p)
	}
	session.Players = make(map[string]*internal.Player)
	session.JoinOrder = nil
	session.Mu.Unlock()

	for _, p := range players {
		p.Mu.Lock()
		if p.Conn != nil {
			_ = p.Conn.Close()
		}
		p.Mu.Unlock()
	}

	log.Info().Str("session_id", id).Msg("session removed")
}

// StartReaper periodically removes long-disconnected players and tears down
// idle sessions. Runs until ctx is cancelled.
func (o *Orchestrator) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := o.clock.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				o.reap()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (o *Orchestrator) reap() {
	now := o.clock.Now()

	o.mu.RLock()
	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	o.mu.RUnlock()

	for _, id := range ids {
		session, err := o.Session(id)
		if err != nil {
			continue
		}

		session.Mu.RLock()
		idle := now.Sub(session.LastActive) > o.cfg.IdleTimeout
		var stale []string
		for pid, p := range session.Players {
			if !p.IsConnected && !p.DisconnectedAt.IsZero() &&
				now.Sub(p.DisconnectedAt) > o.cfg.ReconnectGrace {
				stale = append(stale, pid)
			}
		}
		session.Mu.RUnlock()

		for _, pid := range stale {
			log.Info().Str("session_id", id).Str("player_id", pid).
				Msg("reaping disconnected player")
			_ = o.RemovePlayer(id, pid)
		}

		if idle {
			log.Info().Str("session_id", id).Msg("reaping idle session")
			o.removeSession(id)
		}
	}
}
