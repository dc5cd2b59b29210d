// Package mirror is the client-side event reconciler: it folds the
// authority's event stream into locally mirrored state exactly once per
// event. Staleness is decided by comparing round numbers, never by ad hoc
// "already handled" flags, so replayed or out-of-order deliveries reduce to
// no-ops deterministically.
package mirror

import (
	"encoding/json"
	"fmt"

	"github.com/scythe504/quizrush-backend/internal"
)

// State is the mirrored view of one session for one player. Apply treats it
// as a value: slices are replaced, never mutated in place.
type State struct {
	SessionId   string
	PlayerId    string
	Round       int
	Phase       internal.RoundState
	Question    string
	SecondsLeft int
	MasterId    string
	MasterName  string
	Players     []internal.PlayerSnapshot

	// Private per-round view for this player
	AttemptsLeft int
	HasAnswered  bool

	LastResult *internal.RoundEndedData
	Chat       []internal.ChatBroadcastData
}

// NewState seeds the mirror from the snapshot returned by create/join. A
// reconnecting player's attempt budget comes from their roster entry, not a
// fresh default.
func NewState(playerId string, snap internal.SessionSnapshot) State {
	s := State{
		SessionId:    snap.Id,
		PlayerId:     playerId,
		Round:        snap.RoundNumber,
		Phase:        snap.State,
		Question:     snap.Question,
		MasterId:     snap.MasterId,
		MasterName:   snap.MasterName,
		Players:      snap.Players,
		AttemptsLeft: internal.MaxAttemptsPerRound,
	}
	for _, p := range snap.Players {
		if p.Id == playerId {
			s.AttemptsLeft = internal.MaxAttemptsPerRound - p.Attempts
			if s.AttemptsLeft < 0 {
				s.AttemptsLeft = 0
			}
			s.HasAnswered = p.HasAnswered
			break
		}
	}
	return s
}

// Apply folds one event into the state, returning the next state and any
// notifications it produced. Applying an event that is stale, or that has
// already been applied, returns the state unchanged.
func Apply(s State, msg internal.Message[json.RawMessage]) (State, []Notification) {
	switch msg.Type {
	case internal.EventRoundStarted:
		var d internal.RoundStartedData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		if d.RoundNumber < s.Round {
			return s, nil
		}
		if d.RoundNumber == s.Round && s.Phase != internal.StateWaiting {
			// replayed delivery of a round we already entered
			return s, nil
		}
		s.Round = d.RoundNumber
		s.Phase = internal.StateInProgress
		s.Question = d.Question
		s.SecondsLeft = d.DurationSeconds
		s.MasterId = d.MasterId
		s.AttemptsLeft = internal.MaxAttemptsPerRound
		s.HasAnswered = false
		s.LastResult = nil
		return s, []Notification{{Kind: KindRound, Text: fmt.Sprintf("Round %d started", d.RoundNumber)}}

	case internal.EventTimeRemaining:
		var d internal.TimeRemainingData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		if d.RoundNumber != s.Round || s.Phase != internal.StateInProgress {
			return s, nil
		}
		s.SecondsLeft = d.SecondsLeft
		return s, nil

	case internal.EventGuessResult:
		var d internal.GuessResultData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		if d.RoundNumber != s.Round {
			return s, nil
		}
		s.AttemptsLeft = d.AttemptsLeft
		if d.Correct {
			s.HasAnswered = true
			return s, []Notification{{Kind: KindGuess, Text: "Correct! You won this round"}}
		}
		return s, []Notification{{Kind: KindGuess, Text: fmt.Sprintf("Wrong! %d attempts left", d.AttemptsLeft)}}

	case internal.EventRoundEnded:
		var d internal.RoundEndedData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		if d.RoundNumber < s.Round {
			return s, nil
		}
		if d.RoundNumber == s.Round && s.Phase == internal.StateEnded {
			return s, nil
		}
		s.Round = d.RoundNumber
		s.Phase = internal.StateEnded
		s.Players = d.Scores
		s.LastResult = &d
		text := fmt.Sprintf("Time's up! Answer: %s", d.Answer)
		if d.Winner != nil {
			text = fmt.Sprintf("%s won the round! Answer: %s", d.Winner.Name, d.Answer)
		}
		return s, []Notification{{Kind: KindRound, Text: text}}

	case internal.EventNewRoundReady:
		var d internal.NewRoundReadyData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		if d.RoundNumber <= s.Round {
			return s, nil
		}
		s.Round = d.RoundNumber
		s.Phase = internal.StateWaiting
		s.Question = ""
		s.SecondsLeft = 0
		s.MasterId = d.MasterId
		s.MasterName = d.MasterName
		s.Players = d.Players
		s.AttemptsLeft = internal.MaxAttemptsPerRound
		s.HasAnswered = false
		return s, []Notification{{Kind: KindRound, Text: fmt.Sprintf("%s is the new game master", d.MasterName)}}

	case internal.EventRosterChanged:
		var d internal.RosterChangedData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		s.Players = d.Players
		s.MasterId = ""
		s.MasterName = ""
		for _, p := range d.Players {
			if p.IsGameMaster {
				s.MasterId = p.Id
				s.MasterName = p.Name
				break
			}
		}
		return s, rosterNotification(d)

	case internal.EventChatMessage:
		var d internal.ChatBroadcastData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		chat := make([]internal.ChatBroadcastData, len(s.Chat), len(s.Chat)+1)
		copy(chat, s.Chat)
		s.Chat = append(chat, d)
		return s, []Notification{{Kind: KindChat, Text: fmt.Sprintf("%s: %s", d.PlayerName, d.Message)}}

	case internal.EventError:
		var d internal.ErrorData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return s, nil
		}
		return s, []Notification{{Kind: KindError, Text: d.Message}}
	}

	return s, nil
}

func rosterNotification(d internal.RosterChangedData) []Notification {
	name := ""
	for _, p := range d.Players {
		if p.Id == d.PlayerId {
			name = p.Name
			break
		}
	}
	switch d.Cause {
	case internal.RosterJoined:
		if name == "" {
			name = "A player"
		}
		return []Notification{{Kind: KindRoster, Text: name + " joined the game"}}
	case internal.RosterLeft:
		return []Notification{{Kind: KindRoster, Text: "A player left the game"}}
	case internal.RosterDisconnected:
		if name == "" {
			name = "A player"
		}
		return []Notification{{Kind: KindRoster, Text: name + " disconnected"}}
	case internal.RosterRoleChanged:
		if name == "" {
			name = "A player"
		}
		return []Notification{{Kind: KindRoster, Text: name + " is now the game master"}}
	}
	return nil
}
