package internal

import "errors"

// GameError carries a stable machine code alongside the human message. Every
// rejected request maps to exactly one of these and leaves state untouched.
type GameError struct {
	Code string
	Msg  string
}

func (e *GameError) Error() string {
	return e.Msg
}

var (
	ErrSessionNotFound     = &GameError{Code: "session-not-found", Msg: "session not found"}
	ErrSessionFull         = &GameError{Code: "session-full", Msg: "session is full"}
	ErrNotGameMaster       = &GameError{Code: "not-game-master", Msg: "only the game master can start a round"}
	ErrMasterCannotGuess   = &GameError{Code: "game-master-cannot-guess", Msg: "the game master cannot submit guesses"}
	ErrNotEnoughPlayers    = &GameError{Code: "not-enough-players", Msg: "at least two players are required to start"}
	ErrRoundNotActive      = &GameError{Code: "round-not-active", Msg: "no round is currently in progress"}
	ErrRoundInProgress     = &GameError{Code: "round-in-progress", Msg: "a round is already in progress"}
	ErrAlreadyAnswered     = &GameError{Code: "already-answered", Msg: "you already answered correctly this round"}
	ErrNoAttemptsLeft      = &GameError{Code: "no-attempts-left", Msg: "no attempts left this round"}
	ErrInvalidQuestion     = &GameError{Code: "invalid-question", Msg: "question must be at least 5 characters"}
	ErrInvalidAnswer       = &GameError{Code: "invalid-answer", Msg: "answer must not be empty"}
	ErrPlayerNotFound      = &GameError{Code: "player-not-found", Msg: "player not found in session"}
	ErrPlayerDisconnected  = &GameError{Code: "player-disconnected", Msg: "player connection is closed"}
	ErrInvalidName         = &GameError{Code: "invalid-name", Msg: "display name must be 1-20 characters"}
)

// ErrorDataFor converts any error into the wire-level error payload. Unknown
// errors are masked behind a generic code so internals never leak.
func ErrorDataFor(err error) ErrorData {
	var ge *GameError
	if errors.As(err, &ge) {
		return ErrorData{Code: ge.Code, Message: ge.Msg}
	}
	return ErrorData{Code: "internal-error", Message: "internal error"}
}
