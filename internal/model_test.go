package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	s := &Session{
		Id:          "ABC123",
		Players:     make(map[string]*Player),
		State:       StateWaiting,
		RoundNumber: 1,
	}
	for i, name := range []string{"alice", "bob", "carol"} {
		p := &Player{Id: name, Name: name, Session: s, IsConnected: true}
		if i == 0 {
			p.IsGameMaster = true
		}
		s.Players[p.Id] = p
		s.JoinOrder = append(s.JoinOrder, p.Id)
	}
	return s
}

func TestSnapshotHidesAnswerAndPendingQuestion(t *testing.T) {
	s := testSession()
	s.Question = "What is 2+2?"
	s.Answer = "4"

	snap := s.Snapshot()
	assert.Empty(t, snap.Question, "question must stay hidden while waiting")
	assert.Equal(t, "alice", snap.MasterId)

	s.State = StateInProgress
	snap = s.Snapshot()
	assert.Equal(t, "What is 2+2?", snap.Question)
}

func TestRosterFollowsJoinOrder(t *testing.T) {
	s := testSession()
	roster := s.Roster()
	require.Len(t, roster, 3)
	assert.Equal(t, "alice", roster[0].Id)
	assert.Equal(t, "bob", roster[1].Id)
	assert.Equal(t, "carol", roster[2].Id)
	assert.True(t, roster[0].IsGameMaster)
}

func TestResetForNewRoundKeepsScores(t *testing.T) {
	s := testSession()
	p := s.Players["bob"]
	p.Score = 30
	p.Attempts = 3
	p.HasAnswered = true

	s.ResetForNewRound()
	assert.Equal(t, 30, p.Score)
	assert.Equal(t, 0, p.Attempts)
	assert.False(t, p.HasAnswered)
}

func TestAttemptsLeftNeverNegative(t *testing.T) {
	p := &Player{Attempts: MaxAttemptsPerRound + 1}
	assert.Equal(t, 0, p.AttemptsLeft())
}

func TestSafeWriteJSONAfterDetach(t *testing.T) {
	p := &Player{}
	err := p.SafeWriteJSON(Message[any]{Type: EventError})
	assert.ErrorIs(t, err, ErrPlayerDisconnected)
}
