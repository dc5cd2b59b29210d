package game

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/quizrush-backend/internal"
)

func chatPayload(t *testing.T, message string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(internal.ChatMessageData{Message: message})
	require.NoError(t, err)
	return raw
}

func TestChatIsRelayedToWholeSession(t *testing.T) {
	o, _ := newTestOrchestrator(Config{})
	_, _, masterConn, guesser, guesserConn := seedSession(t, o)
	h := NewHub(o)

	h.handleChat(guesser, chatPayload(t, "  good luck  "))

	for _, conn := range []*fakeConn{masterConn, guesserConn} {
		msg, ok := conn.lastEvent(internal.EventChatMessage)
		require.True(t, ok)
		data := msg.Data.(internal.ChatBroadcastData)
		assert.Equal(t, "good luck", data.Message)
		assert.Equal(t, guesser.Id, data.PlayerId)
		assert.Equal(t, "bob", data.PlayerName)
	}
}

func TestChatDropsEmptyMessages(t *testing.T) {
	o, _ := newTestOrchestrator(Config{})
	_, _, masterConn, guesser, _ := seedSession(t, o)
	h := NewHub(o)

	h.handleChat(guesser, chatPayload(t, "   "))

	_, ok := masterConn.lastEvent(internal.EventChatMessage)
	assert.False(t, ok)
}

func TestChatTruncatesOnRuneBoundary(t *testing.T) {
	o, _ := newTestOrchestrator(Config{})
	_, _, masterConn, guesser, _ := seedSession(t, o)
	h := NewHub(o)

	h.handleChat(guesser, chatPayload(t, strings.Repeat("é", maxChatMessageLength+50)))

	msg, ok := masterConn.lastEvent(internal.EventChatMessage)
	require.True(t, ok)
	data := msg.Data.(internal.ChatBroadcastData)
	assert.True(t, utf8.ValidString(data.Message))
	assert.Equal(t, maxChatMessageLength, utf8.RuneCountInString(data.Message))
}
