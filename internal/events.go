package internal

import "time"

// Message is the wire envelope for every event in either direction.
type Message[T any] struct {
	Type EventType `json:"type"`
	Data T         `json:"data"`
}

type EventType string

// Client -> authority events.
const (
	EventCreateSession EventType = "create-session"
	EventJoinSession   EventType = "join-session"
	EventLeaveSession  EventType = "leave-session"
	EventStartGame     EventType = "start-game"
	EventSubmitAnswer  EventType = "submit-answer"
	EventChatMessage   EventType = "chat-message"
	EventListSessions  EventType = "list-sessions"
)

// Authority -> client events. Round-scoped payloads carry the round number so
// mirrors can drop stale or replayed deliveries deterministically.
const (
	EventSessionCreated EventType = "session-created"
	EventSessionJoined  EventType = "session-joined"
	EventRoundStarted   EventType = "round-started"
	EventTimeRemaining  EventType = "time-remaining"
	EventGuessResult    EventType = "guess-result"
	EventRoundEnded     EventType = "round-ended"
	EventNewRoundReady  EventType = "new-round-ready"
	EventRosterChanged  EventType = "roster-changed"
	EventSessionList    EventType = "session-list"
	EventError          EventType = "error"
)

type CreateSessionData struct {
	PlayerName string `json:"player_name"`
}

type JoinSessionData struct {
	SessionId  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	// PlayerId lets a reconnecting client reclaim its membership.
	PlayerId string `json:"player_id,omitempty"`
}

type LeaveSessionData struct {
	SessionId string `json:"session_id"`
}

type StartGameData struct {
	SessionId string `json:"session_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type SubmitAnswerData struct {
	SessionId string `json:"session_id,omitempty"`
	Answer    string `json:"answer"`
}

type ChatMessageData struct {
	SessionId string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type SessionSnapshot struct {
	Id          string           `json:"id"`
	State       RoundState       `json:"state"`
	RoundNumber int              `json:"round_number"`
	Question    string           `json:"question,omitempty"`
	MasterId    string           `json:"master_id,omitempty"`
	MasterName  string           `json:"master_name,omitempty"`
	Players     []PlayerSnapshot `json:"players"`
	LastResult  *RoundResult     `json:"last_result,omitempty"`
}

type SessionCreatedData struct {
	SessionId string          `json:"session_id"`
	PlayerId  string          `json:"player_id"`
	Session   SessionSnapshot `json:"session"`
}

type SessionJoinedData struct {
	SessionId string          `json:"session_id"`
	PlayerId  string          `json:"player_id"`
	Session   SessionSnapshot `json:"session"`
}

type RoundStartedData struct {
	SessionId       string `json:"session_id"`
	RoundNumber     int    `json:"round_number"`
	Question        string `json:"question"`
	DurationSeconds int    `json:"duration_seconds"`
	MasterId        string `json:"master_id"`
}

type TimeRemainingData struct {
	SessionId   string `json:"session_id"`
	RoundNumber int    `json:"round_number"`
	SecondsLeft int    `json:"seconds_left"`
}

// GuessResultData is addressed to the guessing player only.
type GuessResultData struct {
	RoundNumber  int  `json:"round_number"`
	Correct      bool `json:"correct"`
	AttemptsLeft int  `json:"attempts_left"`
}

type RoundEndedData struct {
	SessionId   string           `json:"session_id"`
	RoundNumber int              `json:"round_number"`
	Winner      *PlayerSnapshot  `json:"winner,omitempty"`
	Answer      string           `json:"answer"`
	Scores      []PlayerSnapshot `json:"scores"`
}

type NewRoundReadyData struct {
	SessionId   string           `json:"session_id"`
	RoundNumber int              `json:"round_number"`
	MasterId    string           `json:"master_id"`
	MasterName  string           `json:"master_name"`
	Players     []PlayerSnapshot `json:"players"`
}

type RosterChangeCause string

const (
	RosterJoined RosterChangeCause = "joined"
	// RosterLeft means removed from the roster; a dropped connection with the
	// seat kept for reconnect is RosterDisconnected.
	RosterLeft         RosterChangeCause = "left"
	RosterDisconnected RosterChangeCause = "disconnected"
	RosterRoleChanged  RosterChangeCause = "role-changed"
)

type RosterChangedData struct {
	SessionId string            `json:"session_id"`
	Cause     RosterChangeCause `json:"cause"`
	PlayerId  string            `json:"player_id,omitempty"`
	Players   []PlayerSnapshot  `json:"players"`
}

type ChatBroadcastData struct {
	SessionId  string    `json:"session_id"`
	PlayerId   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Message    string    `json:"message"`
	SentAt     time.Time `json:"sent_at"`
}

type SessionSummary struct {
	Id          string     `json:"id"`
	PlayerCount int        `json:"player_count"`
	State       RoundState `json:"state"`
	MasterName  string     `json:"master_name,omitempty"`
}

type SessionListData struct {
	Sessions []SessionSummary `json:"sessions"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
