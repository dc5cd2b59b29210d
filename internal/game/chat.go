package game

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/scythe504/quizrush-backend/internal"
)

const maxChatMessageLength = 200

// handleChat relays a chat line to the whole session. The log is append-only
// on the client side; the authority just stamps and rebroadcasts.
func (h *Hub) handleChat(player *internal.Player, raw json.RawMessage) {
	if player == nil || player.Session == nil {
		return
	}
	var data internal.ChatMessageData
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}
	text := strings.TrimSpace(data.Message)
	if text == "" {
		return
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		// rune boundary, never mid-codepoint
		text = string([]rune(text)[:maxChatMessageLength])
	}

	BroadcastToSession(player.Session, internal.Message[any]{
		Type: internal.EventChatMessage,
		Data: internal.ChatBroadcastData{
			SessionId:  player.Session.Id,
			PlayerId:   player.Id,
			PlayerName: player.Name,
			Message:    text,
			SentAt:     h.orch.clock.Now(),
		},
	})
}
