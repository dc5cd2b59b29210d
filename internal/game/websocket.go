package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/quizrush-backend/internal"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub bridges websocket connections and the session orchestrator. One read
// loop per connection; each inbound envelope is routed to the matching
// authority operation and errors go back only to the caller.
type Hub struct {
	orch *Orchestrator
}

func NewHub(orch *Orchestrator) *Hub {
	return &Hub{orch: orch}
}

// HandleWebSocket upgrades the HTTP connection and starts the read loop.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	var player *internal.Player

	defer func() {
		conn.Close()
		if player == nil || player.Session == nil {
			return
		}
		_ = h.orch.DetachPlayer(player.Session.Id, player.Id)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Debug().Err(err).Msg("malformed envelope")
			continue
		}

		switch envelope.Type {
		case internal.EventCreateSession:
			player = h.handleCreateSession(conn, player, envelope.Data)

		case internal.EventJoinSession:
			player = h.handleJoinSession(conn, player, envelope.Data)

		case internal.EventLeaveSession:
			if player != nil && player.Session != nil {
				_ = h.orch.RemovePlayer(player.Session.Id, player.Id)
				player = nil
			}

		case internal.EventStartGame:
			h.handleStartGame(player, envelope.Data)

		case internal.EventSubmitAnswer:
			h.handleSubmitAnswer(player, envelope.Data)

		case internal.EventChatMessage:
			h.handleChat(player, envelope.Data)

		case internal.EventListSessions:
			h.reply(conn, player, internal.Message[any]{
				Type: internal.EventSessionList,
				Data: internal.SessionListData{Sessions: h.orch.ListSessions()},
			})

		default:
			log.Debug().Str("event", string(envelope.Type)).Msg("unknown event type")
		}
	}
}

func (h *Hub) handleCreateSession(conn *websocket.Conn, player *internal.Player, raw json.RawMessage) *internal.Player {
	var data internal.CreateSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		h.replyError(conn, player, internal.ErrInvalidName)
		return player
	}
	// A connection hopping to a new session implicitly leaves the old one.
	if player != nil && player.Session != nil {
		_ = h.orch.RemovePlayer(player.Session.Id, player.Id)
	}

	session, created, err := h.orch.CreateSession(data.PlayerName, conn)
	if err != nil {
		h.replyError(conn, player, err)
		return nil
	}

	session.Mu.RLock()
	snap := session.Snapshot()
	session.Mu.RUnlock()

	_ = created.SafeWriteJSON(internal.Message[any]{
		Type: internal.EventSessionCreated,
		Data: internal.SessionCreatedData{
			SessionId: session.Id,
			PlayerId:  created.Id,
			Session:   snap,
		},
	})
	return created
}

func (h *Hub) handleJoinSession(conn *websocket.Conn, player *internal.Player, raw json.RawMessage) *internal.Player {
	var data internal.JoinSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		h.replyError(conn, player, internal.ErrSessionNotFound)
		return player
	}
	if player != nil && player.Session != nil {
		if player.Session.Id == data.SessionId {
			// duplicate join delivery; re-send the snapshot instead of
			// seating the player twice
			session := player.Session
			session.Mu.RLock()
			snap := session.Snapshot()
			session.Mu.RUnlock()
			_ = player.SafeWriteJSON(internal.Message[any]{
				Type: internal.EventSessionJoined,
				Data: internal.SessionJoinedData{
					SessionId: session.Id,
					PlayerId:  player.Id,
					Session:   snap,
				},
			})
			return player
		}
		_ = h.orch.RemovePlayer(player.Session.Id, player.Id)
		player = nil
	}

	var joined *internal.Player
	var err error
	if data.PlayerId != "" {
		joined, err = h.orch.ReattachPlayer(data.SessionId, data.PlayerId, conn)
		if errors.Is(err, internal.ErrPlayerNotFound) {
			joined, err = h.orch.AddPlayer(data.SessionId, data.PlayerName, conn)
		}
	} else {
		joined, err = h.orch.AddPlayer(data.SessionId, data.PlayerName, conn)
	}
	if err != nil {
		h.replyError(conn, player, err)
		return player
	}

	session := joined.Session
	session.Mu.RLock()
	snap := session.Snapshot()
	session.Mu.RUnlock()

	_ = joined.SafeWriteJSON(internal.Message[any]{
		Type: internal.EventSessionJoined,
		Data: internal.SessionJoinedData{
			SessionId: session.Id,
			PlayerId:  joined.Id,
			Session:   snap,
		},
	})
	return joined
}

func (h *Hub) handleStartGame(player *internal.Player, raw json.RawMessage) {
	if player == nil || player.Session == nil {
		return
	}
	var data internal.StartGameData
	if err := json.Unmarshal(raw, &data); err != nil {
		SendError(player, internal.ErrInvalidQuestion)
		return
	}
	sessionId := data.SessionId
	if sessionId == "" {
		sessionId = player.Session.Id
	}
	if err := h.orch.StartRound(sessionId, player.Id, data.Question, data.Answer); err != nil {
		SendError(player, err)
	}
}

func (h *Hub) handleSubmitAnswer(player *internal.Player, raw json.RawMessage) {
	if player == nil || player.Session == nil {
		return
	}
	var data internal.SubmitAnswerData
	if err := json.Unmarshal(raw, &data); err != nil {
		SendError(player, internal.ErrInvalidAnswer)
		return
	}
	sessionId := data.SessionId
	if sessionId == "" {
		sessionId = player.Session.Id
	}
	result, err := h.orch.SubmitAnswer(sessionId, player.Id, data.Answer)
	if err != nil {
		SendError(player, err)
		return
	}
	_ = player.SafeWriteJSON(internal.Message[any]{
		Type: internal.EventGuessResult,
		Data: result,
	})
}

// reply writes to the player when one exists, else straight to the bare
// connection (only the read loop writes pre-join, so no write race).
func (h *Hub) reply(conn *websocket.Conn, player *internal.Player, msg internal.Message[any]) {
	if player != nil {
		_ = player.SafeWriteJSON(msg)
		return
	}
	_ = conn.WriteJSON(msg)
}

func (h *Hub) replyError(conn *websocket.Conn, player *internal.Player, err error) {
	h.reply(conn, player, internal.Message[any]{
		Type: internal.EventError,
		Data: internal.ErrorDataFor(err),
	})
}
