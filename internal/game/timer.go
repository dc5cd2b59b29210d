package game

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// TIMER SERVICE
// =============================================================================

// TickFunc receives coalesced once-per-second countdown updates.
type TickFunc func(sessionId string, roundNumber int, secondsLeft int)

// ExpireFunc fires exactly once when the countdown runs out.
type ExpireFunc func(sessionId string, roundNumber int)

// TimerService runs one countdown per session, scoped to a round number.
// An expiry for a cancelled or superseded round is a silent no-op, so a
// stale timer can never end a later round.
type TimerService struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	active map[string]*roundTimer
}

type roundTimer struct {
	roundNumber int
	cancel      context.CancelFunc
}

func NewTimerService(clock clockwork.Clock) *TimerService {
	return &TimerService{
		clock:  clock,
		active: make(map[string]*roundTimer),
	}
}

// Start begins a countdown for (sessionId, roundNumber), replacing any
// countdown already running for the session. Callbacks run on the timer
// goroutine; callers funnel them back through the session's own lock.
func (ts *TimerService) Start(ctx context.Context, sessionId string, roundNumber int, d time.Duration, onTick TickFunc, onExpire ExpireFunc) {
	ctx, cancel := context.WithCancel(ctx)

	ts.mu.Lock()
	if existing, ok := ts.active[sessionId]; ok {
		existing.cancel()
	}
	ts.active[sessionId] = &roundTimer{roundNumber: roundNumber, cancel: cancel}
	ts.mu.Unlock()

	deadline := ts.clock.Now().Add(d)

	go func() {
		ticker := ts.clock.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				remaining := deadline.Sub(ts.clock.Now())
				if remaining <= 0 {
					if !ts.clear(sessionId, roundNumber) {
						// superseded between fire and clear
						return
					}
					log.Debug().Str("session_id", sessionId).Int("round", roundNumber).
						Msg("countdown expired")
					onExpire(sessionId, roundNumber)
					return
				}
				if onTick != nil {
					onTick(sessionId, roundNumber, int(remaining.Round(time.Second)/time.Second))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Cancel stops the countdown for (sessionId, roundNumber). Cancelling a
// round that is no longer current is a no-op.
func (ts *TimerService) Cancel(sessionId string, roundNumber int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	cur, ok := ts.active[sessionId]
	if !ok || cur.roundNumber != roundNumber {
		return
	}
	cur.cancel()
	delete(ts.active, sessionId)
}

// CancelSession stops whatever countdown the session has, used at teardown.
func (ts *TimerService) CancelSession(sessionId string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if cur, ok := ts.active[sessionId]; ok {
		cur.cancel()
		delete(ts.active, sessionId)
	}
}

// clear removes the entry if it still belongs to roundNumber, reporting
// whether this expiry is current.
func (ts *TimerService) clear(sessionId string, roundNumber int) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	cur, ok := ts.active[sessionId]
	if !ok || cur.roundNumber != roundNumber {
		return false
	}
	delete(ts.active, sessionId)
	return true
}
