package mirror

import (
	"encoding/json"
	"sync"

	"github.com/scythe504/quizrush-backend/internal"
)

type NotificationKind string

const (
	KindRound  NotificationKind = "round"
	KindGuess  NotificationKind = "guess"
	KindRoster NotificationKind = "roster"
	KindChat   NotificationKind = "chat"
	KindError  NotificationKind = "error"
)

// Notification is a user-facing message produced while folding events.
// Delivery is decoupled from state application: Apply only queues, the
// presentation layer drains at its own pace.
type Notification struct {
	Kind NotificationKind
	Text string
}

// Mirror owns one session's mirrored state and its notification queue for
// the lifetime of the session, independent of any UI lifecycle.
type Mirror struct {
	mu      sync.Mutex
	state   State
	pending []Notification
}

func New(playerId string, snap internal.SessionSnapshot) *Mirror {
	return &Mirror{state: NewState(playerId, snap)}
}

// Apply folds one raw event and queues whatever notifications it produced.
func (m *Mirror) Apply(msg internal.Message[json.RawMessage]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, notes := Apply(m.state, msg)
	m.state = next
	m.pending = append(m.pending, notes...)
}

// State returns the current mirrored state.
func (m *Mirror) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Drain returns and clears the queued notifications in arrival order.
func (m *Mirror) Drain() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}
