package game

import (
	"github.com/rs/zerolog/log"

	"github.com/scythe504/quizrush-backend/internal"
)

// =============================================================================
// BROADCAST HELPERS
// =============================================================================

// BroadcastToSession fans a message out to every member. Connections are
// snapshotted under a read lock and written to with no lock held, so a slow
// client never blocks the session.
func BroadcastToSession(session *internal.Session, msg internal.Message[any]) {
	BroadcastToSessionExcept(session, msg, nil)
}

// BroadcastToSessionExcept fans out to everyone but the excluded player.
func BroadcastToSessionExcept(session *internal.Session, msg internal.Message[any], except *internal.Player) {
	if session == nil {
		return
	}
	session.Mu.RLock()
	players := make([]*internal.Player, 0, len(session.Players))
	for _, p := range session.Players {
		if p != nil && p != except {
			players = append(players, p)
		}
	}
	session.Mu.RUnlock()

	for _, p := range players {
		if err := p.SafeWriteJSON(msg); err != nil {
			log.Debug().Str("session_id", session.Id).Str("player_id", p.Id).
				Str("event", string(msg.Type)).Err(err).Msg("broadcast write failed")
		}
	}
}

// SendError delivers a structured error only to the initiating player.
func SendError(p *internal.Player, err error) {
	if p == nil {
		return
	}
	msg := internal.Message[any]{
		Type: internal.EventError,
		Data: internal.ErrorDataFor(err),
	}
	if werr := p.SafeWriteJSON(msg); werr != nil {
		log.Debug().Str("player_id", p.Id).Err(werr).Msg("error write failed")
	}
}
