package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/quizrush-backend/internal"
)

// fakeConn records everything written to it, standing in for a websocket
// connection.
type fakeConn struct {
	mu     sync.Mutex
	writes []any
	closed bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// events returns every recorded message of the given type, in write order.
func (c *fakeConn) events(t internal.EventType) []internal.Message[any] {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []internal.Message[any]
	for _, w := range c.writes {
		if msg, ok := w.(internal.Message[any]); ok && msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

func (c *fakeConn) lastEvent(t internal.EventType) (internal.Message[any], bool) {
	evs := c.events(t)
	if len(evs) == 0 {
		return internal.Message[any]{}, false
	}
	return evs[len(evs)-1], true
}

func newTestOrchestrator(cfg Config) (*Orchestrator, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewOrchestrator(clock, cfg), clock
}

// advanceUntil steps fake time forward one second per poll until cond holds.
// Timer goroutines register their tickers asynchronously, so a fixed single
// Advance would race with them.
func advanceUntil(t *testing.T, clock *clockwork.FakeClock, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		clock.Advance(time.Second)
		return cond()
	}, 5*time.Second, 10*time.Millisecond)
}

// seedSession creates a session with two players: the creator (game master)
// and one guesser.
func seedSession(t *testing.T, o *Orchestrator) (*internal.Session, *internal.Player, *fakeConn, *internal.Player, *fakeConn) {
	t.Helper()
	masterConn := &fakeConn{}
	session, master, err := o.CreateSession("alice", masterConn)
	require.NoError(t, err)

	guesserConn := &fakeConn{}
	guesser, err := o.AddPlayer(session.Id, "bob", guesserConn)
	require.NoError(t, err)

	return session, master, masterConn, guesser, guesserConn
}

func sessionState(s *internal.Session) internal.RoundState {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.State
}

func sessionRound(s *internal.Session) int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.RoundNumber
}

func masterId(s *internal.Session) string {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	if m := s.MasterPlayer(); m != nil {
		return m.Id
	}
	return ""
}

func playerScore(s *internal.Session, id string) int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	if p, ok := s.Players[id]; ok {
		return p.Score
	}
	return -1
}

func countMasters(s *internal.Session) int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	n := 0
	for _, p := range s.Players {
		if p.IsGameMaster {
			n++
		}
	}
	return n
}
