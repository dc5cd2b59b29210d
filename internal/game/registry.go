package game

import (
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/quizrush-backend/internal"
	"github.com/scythe504/quizrush-backend/internal/utils"
)

// =============================================================================
// PLAYER REGISTRY
// =============================================================================

// AddPlayer seats a new player in the session. The first player to join
// becomes game master. The registry itself performs no network I/O beyond the
// change notification broadcast.
func (o *Orchestrator) AddPlayer(sessionId, name string, conn internal.Conn) (*internal.Player, error) {
	session, err := o.Session(sessionId)
	if err != nil {
		return nil, err
	}
	name = utils.SanitizeName(name)
	if name == "" {
		return nil, internal.ErrInvalidName
	}

	session.Mu.Lock()
	if len(session.Players) >= o.cfg.MaxPlayers {
		session.Mu.Unlock()
		return nil, internal.ErrSessionFull
	}

	player := &internal.Player{
		Id:          utils.NewPlayerId(),
		Conn:        conn,
		Session:     session,
		Name:        name,
		IsConnected: true,
		JoinedAt:    o.clock.Now(),
	}
	if len(session.Players) == 0 {
		player.IsGameMaster = true
		session.MasterIndex = 0
	}
	session.Players[player.Id] = player
	session.JoinOrder = append(session.JoinOrder, player.Id)
	o.touchLocked(session)

	roster := session.Roster()
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Str("player_id", player.Id).
		Str("player", name).Int("players", len(roster)).Msg("player joined")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRosterChanged,
		Data: internal.RosterChangedData{
			SessionId: sessionId,
			Cause:     internal.RosterJoined,
			PlayerId:  player.Id,
			Players:   roster,
		},
	})
	return player, nil
}

// ReattachPlayer re-binds an existing member's connection after a reconnect.
// Score and attempts survive because identity is keyed to session membership,
// not to a transport connection.
func (o *Orchestrator) ReattachPlayer(sessionId, playerId string, conn internal.Conn) (*internal.Player, error) {
	session, err := o.Session(sessionId)
	if err != nil {
		return nil, err
	}

	session.Mu.Lock()
	player, ok := session.Players[playerId]
	if !ok {
		session.Mu.Unlock()
		return nil, internal.ErrPlayerNotFound
	}
	player.AttachConn(conn)
	player.IsConnected = true
	player.DisconnectedAt = time.Time{}
	o.touchLocked(session)
	roster := session.Roster()
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Str("player_id", playerId).
		Msg("player reconnected")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRosterChanged,
		Data: internal.RosterChangedData{
			SessionId: sessionId,
			Cause:     internal.RosterJoined,
			PlayerId:  playerId,
			Players:   roster,
		},
	})
	return player, nil
}

// DetachPlayer marks a member disconnected without removing membership, so a
// reconnect keeps score and attempts; the reaper removes them if they never
// come back. Presence flags change under the session lock, the same lock the
// reaper and roster snapshots read them under.
func (o *Orchestrator) DetachPlayer(sessionId, playerId string) error {
	session, err := o.Session(sessionId)
	if err != nil {
		return err
	}

	session.Mu.Lock()
	player, ok := session.Players[playerId]
	if !ok {
		session.Mu.Unlock()
		return internal.ErrPlayerNotFound
	}
	player.DetachConn()
	player.IsConnected = false
	player.DisconnectedAt = o.clock.Now()
	roster := session.Roster()
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Str("player_id", playerId).
		Msg("player disconnected")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRosterChanged,
		Data: internal.RosterChangedData{
			SessionId: sessionId,
			Cause:     internal.RosterDisconnected,
			PlayerId:  playerId,
			Players:   roster,
		},
	})
	return nil
}

// RemovePlayer removes the player and, if they were game master, promotes the
// next player by join order. An empty session is torn down. Rounds are never
// aborted by departures; at most the master role moves.
func (o *Orchestrator) RemovePlayer(sessionId, playerId string) error {
	session, err := o.Session(sessionId)
	if err != nil {
		return err
	}

	session.Mu.Lock()
	player, ok := session.Players[playerId]
	if !ok {
		session.Mu.Unlock()
		return internal.ErrPlayerNotFound
	}

	idx := slices.Index(session.JoinOrder, playerId)
	wasMaster := player.IsGameMaster
	player.IsGameMaster = false
	delete(session.Players, playerId)
	if idx >= 0 {
		session.JoinOrder = slices.Delete(session.JoinOrder, idx, idx+1)
	}

	if len(session.Players) == 0 {
		session.Mu.Unlock()
		log.Info().Str("session_id", sessionId).Msg("last player left, tearing down")
		o.removeSession(sessionId)
		return nil
	}

	// Keep MasterIndex pointing at the same player, or at the next one by
	// join order when the master themselves left.
	if idx >= 0 && idx < session.MasterIndex {
		session.MasterIndex--
	}
	if session.MasterIndex >= len(session.JoinOrder) {
		session.MasterIndex = 0
	}

	var promoted *internal.Player
	if wasMaster {
		promoted = session.Players[session.JoinOrder[session.MasterIndex]]
		promoted.IsGameMaster = true
	}

	o.touchLocked(session)
	roster := session.Roster()
	playerName := player.Name
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Str("player_id", playerId).
		Str("player", playerName).Bool("was_master", wasMaster).Msg("player left")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRosterChanged,
		Data: internal.RosterChangedData{
			SessionId: sessionId,
			Cause:     internal.RosterLeft,
			PlayerId:  playerId,
			Players:   roster,
		},
	})
	if promoted != nil {
		BroadcastToSession(session, internal.Message[any]{
			Type: internal.EventRosterChanged,
			Data: internal.RosterChangedData{
				SessionId: sessionId,
				Cause:     internal.RosterRoleChanged,
				PlayerId:  promoted.Id,
				Players:   roster,
			},
		})
	}
	return nil
}
