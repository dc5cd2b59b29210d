package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/quizrush-backend/internal/game"
)

type Server struct {
	addr string
	orch *game.Orchestrator
	hub  *game.Hub
}

func New(bind string, port int, orch *game.Orchestrator) *Server {
	return &Server{
		addr: fmt.Sprintf("%s:%d", bind, port),
		orch: orch,
		hub:  game.NewHub(orch),
	}
}

// HTTPServer builds the listener with sane timeouts. Websocket connections
// are long-lived, so there is no write timeout on purpose.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
