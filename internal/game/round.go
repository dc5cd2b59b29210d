package game

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/quizrush-backend/internal"
	"github.com/scythe504/quizrush-backend/internal/utils"
)

// =============================================================================
// ROUND CONTROLLER
// =============================================================================
//
// State machine: waiting -> in-progress -> ended -> waiting. Every transition
// is applied under the session lock and driven by exactly one authoritative
// cause: a validated start-game, the first correct guess, a current timer
// expiry, or the grace delay elapsing. Stale causes are rejected or absorbed.

// StartRound validates and applies the game master's start-game action.
func (o *Orchestrator) StartRound(sessionId, playerId, question, answer string) error {
	session, err := o.Session(sessionId)
	if err != nil {
		return err
	}
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	session.Mu.Lock()
	player, ok := session.Players[playerId]
	if !ok {
		session.Mu.Unlock()
		return internal.ErrPlayerNotFound
	}
	if session.State != internal.StateWaiting {
		// duplicate delivery or a replayed stale action
		session.Mu.Unlock()
		return internal.ErrRoundInProgress
	}
	if !player.IsGameMaster {
		session.Mu.Unlock()
		return internal.ErrNotGameMaster
	}
	if len(session.Players) < internal.MinPlayersToStart {
		session.Mu.Unlock()
		return internal.ErrNotEnoughPlayers
	}
	if utf8.RuneCountInString(question) < internal.MinQuestionLength {
		session.Mu.Unlock()
		return internal.ErrInvalidQuestion
	}
	if answer == "" {
		session.Mu.Unlock()
		return internal.ErrInvalidAnswer
	}

	session.Question = question
	session.Answer = answer
	session.State = internal.StateInProgress
	session.RoundMasterId = playerId
	player.LastMasterRound = session.RoundNumber
	session.ResetForNewRound()
	o.touchLocked(session)

	round := session.RoundNumber
	duration := o.cfg.RoundDuration
	ctx := session.Context
	session.Mu.Unlock()

	o.timers.Start(ctx, sessionId, round, duration, o.onTick, o.onRoundExpired)

	log.Info().Str("session_id", sessionId).Int("round", round).
		Str("master_id", playerId).Msg("round started")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRoundStarted,
		Data: internal.RoundStartedData{
			SessionId:       sessionId,
			RoundNumber:     round,
			Question:        question,
			DurationSeconds: int(duration.Seconds()),
			MasterId:        playerId,
		},
	})
	return nil
}

// SubmitAnswer validates and applies one guess. The reply goes only to the
// guessing player; a correct guess ends the round for everyone.
func (o *Orchestrator) SubmitAnswer(sessionId, playerId, guess string) (internal.GuessResultData, error) {
	var zero internal.GuessResultData

	session, err := o.Session(sessionId)
	if err != nil {
		return zero, err
	}

	session.Mu.Lock()
	player, ok := session.Players[playerId]
	if !ok {
		session.Mu.Unlock()
		return zero, internal.ErrPlayerNotFound
	}
	if session.State != internal.StateInProgress {
		session.Mu.Unlock()
		return zero, internal.ErrRoundNotActive
	}
	if player.IsGameMaster {
		session.Mu.Unlock()
		return zero, internal.ErrMasterCannotGuess
	}
	if player.HasAnswered {
		session.Mu.Unlock()
		return zero, internal.ErrAlreadyAnswered
	}
	if player.Attempts >= internal.MaxAttemptsPerRound {
		session.Mu.Unlock()
		return zero, internal.ErrNoAttemptsLeft
	}

	player.Attempts++
	o.touchLocked(session)
	round := session.RoundNumber
	correct := utils.NormalizeGuess(guess) == utils.NormalizeGuess(session.Answer)
	result := internal.GuessResultData{
		RoundNumber:  round,
		Correct:      correct,
		AttemptsLeft: player.AttemptsLeft(),
	}

	if !correct {
		// Exhausted attempts lock this player out but never end the round.
		session.Mu.Unlock()
		log.Debug().Str("session_id", sessionId).Str("player_id", playerId).
			Int("round", round).Int("attempts_left", result.AttemptsLeft).
			Msg("incorrect guess")
		return result, nil
	}

	player.HasAnswered = true
	player.Score += internal.PointsForCorrectGuess
	winner := internal.CreatePlayerSnapshot(player)
	ended := o.endRoundLocked(session, &winner)
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Str("player_id", playerId).
		Int("round", round).Msg("round won")

	o.timers.Cancel(sessionId, round)
	o.finishRound(session, ended)
	return result, nil
}

// endRoundLocked records the terminal outcome. Caller must hold the lock and
// have verified the round is in progress.
func (o *Orchestrator) endRoundLocked(session *internal.Session, winner *internal.PlayerSnapshot) internal.RoundEndedData {
	session.State = internal.StateEnded
	result := &internal.RoundResult{
		RoundNumber: session.RoundNumber,
		Winner:      winner,
		Answer:      session.Answer,
		Scores:      session.Roster(),
		EndedAt:     o.clock.Now(),
	}
	session.LastResult = result
	o.touchLocked(session)

	return internal.RoundEndedData{
		SessionId:   session.Id,
		RoundNumber: result.RoundNumber,
		Winner:      winner,
		Answer:      result.Answer,
		Scores:      result.Scores,
	}
}

// finishRound broadcasts the outcome, answer now revealed, and schedules the
// grace delay before the next round is announced.
func (o *Orchestrator) finishRound(session *internal.Session, ended internal.RoundEndedData) {
	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventRoundEnded,
		Data: ended,
	})
	o.timers.Start(session.Context, session.Id, ended.RoundNumber, o.cfg.GraceDelay, nil, o.onGraceElapsed)
}

// onTick relays countdown updates while the round is still current.
func (o *Orchestrator) onTick(sessionId string, round, secondsLeft int) {
	session, err := o.Session(sessionId)
	if err != nil {
		return
	}
	session.Mu.RLock()
	current := session.State == internal.StateInProgress && session.RoundNumber == round
	session.Mu.RUnlock()
	if !current {
		return
	}
	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventTimeRemaining,
		Data: internal.TimeRemainingData{
			SessionId:   sessionId,
			RoundNumber: round,
			SecondsLeft: secondsLeft,
		},
	})
}

// onRoundExpired ends the round with no winner. A fire for a superseded round
// is absorbed silently.
func (o *Orchestrator) onRoundExpired(sessionId string, round int) {
	session, err := o.Session(sessionId)
	if err != nil {
		return
	}
	session.Mu.Lock()
	if session.State != internal.StateInProgress || session.RoundNumber != round {
		session.Mu.Unlock()
		return
	}
	ended := o.endRoundLocked(session, nil)
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Int("round", round).
		Msg("round expired with no winner")
	o.finishRound(session, ended)
}

// onGraceElapsed rotates the game master and announces the next round.
func (o *Orchestrator) onGraceElapsed(sessionId string, round int) {
	session, err := o.Session(sessionId)
	if err != nil {
		return
	}

	session.Mu.Lock()
	if session.State != internal.StateEnded || session.RoundNumber != round {
		session.Mu.Unlock()
		return
	}
	if len(session.JoinOrder) == 0 {
		session.Mu.Unlock()
		return
	}

	// Rotate strictly by join order with wraparound. If the round's master
	// left mid-round, the registry already promoted the next player, which
	// is exactly who this rotation would have picked; advancing again would
	// skip them.
	master := session.MasterPlayer()
	if master != nil && master.Id == session.RoundMasterId {
		master.IsGameMaster = false
		session.MasterIndex = (session.MasterIndex + 1) % len(session.JoinOrder)
		next := session.Players[session.JoinOrder[session.MasterIndex]]
		next.IsGameMaster = true
	} else if master == nil {
		if session.MasterIndex >= len(session.JoinOrder) {
			session.MasterIndex = 0
		}
		session.Players[session.JoinOrder[session.MasterIndex]].IsGameMaster = true
	}

	session.RoundNumber++
	session.Question = ""
	session.Answer = ""
	session.RoundMasterId = ""
	session.State = internal.StateWaiting
	session.ResetForNewRound()
	o.touchLocked(session)

	newMaster := session.MasterPlayer()
	data := internal.NewRoundReadyData{
		SessionId:   sessionId,
		RoundNumber: session.RoundNumber,
		Players:     session.Roster(),
	}
	if newMaster != nil {
		data.MasterId = newMaster.Id
		data.MasterName = newMaster.Name
	}
	session.Mu.Unlock()

	log.Info().Str("session_id", sessionId).Int("round", data.RoundNumber).
		Str("master_id", data.MasterId).Msg("new round ready")

	BroadcastToSession(session, internal.Message[any]{
		Type: internal.EventNewRoundReady,
		Data: data,
	})
}
