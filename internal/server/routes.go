package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/scythe504/quizrush-backend/internal"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.ListSessionsHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{sessionId}/qr", s.SessionQRHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.HandleWebSocket)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}).Handler(r)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListSessionsHandler mirrors the list-sessions websocket event for lobby
// pages that poll before opening a connection.
func (s *Server) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(internal.SessionListData{Sessions: s.orch.ListSessions()}); err != nil {
		log.Warn().Err(err).Msg("encoding session list failed")
	}
}

// SessionQRHandler renders the shareable join code as a QR image.
func (s *Server) SessionQRHandler(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]
	if _, err := s.orch.Session(sessionId); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/?join=%s", scheme, r.Host, sessionId)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
