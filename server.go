package main

import (
	"net/http"

	"go.uber.org/zap"
)

// server holds the dependencies shared by the HTTP handlers.
type server struct {
	store     Store
	hub       *Hub
	jwtSecret []byte
	log       *zap.Logger
}

func newServer(store Store, jwtSecret []byte, log *zap.Logger) *server {
	if log == nil {
		log = zap.NewNop()
	}
	return &server{
		store:     store,
		hub:       newHub(),
		jwtSecret: jwtSecret,
		log:       log,
	}
}

// routes builds the full handler chain: CORS -> logging -> mux.
func (s *server) routes(corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for Docker
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Scoring
	mux.Handle("POST /api/compatibility", s.compatibilityHandler())

	// Matching workflow
	mux.Handle("GET /api/pets/available", s.availablePetsHandler())
	mux.Handle("POST /api/matches/like", s.likeHandler())
	mux.Handle("GET /api/matches", DataLoaderMiddleware(s.store)(s.matchesHandler()))
	mux.Handle("PUT /api/matches/{id}/accept", s.acceptMatchHandler())

	// Visits and conversation between the parties of a match
	mux.Handle("POST /api/appointments", s.createAppointmentHandler())
	mux.Handle("GET /api/appointments", DataLoaderMiddleware(s.store)(s.appointmentsHandler()))
	mux.Handle("GET /api/chat/{id}", s.chatHistoryHandler())
	mux.Handle("POST /api/chat/{id}/messages", s.sendChatMessageHandler())

	// Live match, appointment and chat notifications
	mux.Handle("GET /ws/matches", s.wsMatchesHandler())

	return withCORS(corsOrigins, s.withLogging(mux))
}
