package internal

type PlayerSnapshot struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	Attempts     int    `json:"attempts"`
	HasAnswered  bool   `json:"has_answered"`
	IsGameMaster bool   `json:"is_game_master"`
	IsConnected  bool   `json:"is_connected"`
}

func (p *Player) ResetRoundState() {
	p.Attempts = 0
	p.HasAnswered = false
}

// AttemptsLeft reports the remaining guess budget for this round.
func (p *Player) AttemptsLeft() int {
	left := MaxAttemptsPerRound - p.Attempts
	if left < 0 {
		return 0
	}
	return left
}

func CreatePlayerSnapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		Id:           p.Id,
		Name:         p.Name,
		Score:        p.Score,
		Attempts:     p.Attempts,
		HasAnswered:  p.HasAnswered,
		IsGameMaster: p.IsGameMaster,
		IsConnected:  p.IsConnected,
	}
}

// SafeWriteJSON serializes writes on a single connection. Concurrent writers
// (broadcasts, private replies, timer ticks) would otherwise interleave frames.
func (p *Player) SafeWriteJSON(v any) error {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn == nil {
		return ErrPlayerDisconnected
	}
	return p.Conn.WriteJSON(v)
}

// AttachConn rebinds a (re)connecting player to a new transport connection,
// closing any old one. IsConnected/DisconnectedAt are session-lock state;
// callers update them under Session.Mu.
func (p *Player) AttachConn(conn Conn) {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	if p.Conn != nil {
		_ = p.Conn.Close()
	}
	p.Conn = conn
}

// DetachConn drops the transport connection only; session membership and the
// presence flags are the orchestrator's to change.
func (p *Player) DetachConn() {
	p.Mu.Lock()
	defer p.Mu.Unlock()
	p.Conn = nil
}
