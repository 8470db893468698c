package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultChatPage = 50
	maxChatPage     = 200
)

type chatMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// chatView is one page of a match's conversation.
type chatView struct {
	MatchID  uuid.UUID      `json:"match_id"`
	Messages []*ChatMessage `json:"messages"`
}

// GET /api/chat/{id}?limit=50&before=2025-09-16T08:00:00Z
func (s *server) chatHistoryHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		limit := defaultChatPage
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "invalid_limit")
				return
			}
			limit = min(n, maxChatPage)
		}
		var before time.Time
		if raw := r.URL.Query().Get("before"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_before")
				return
			}
			before = t
		}

		id, ok := matchIDFromPath(w, r)
		if !ok {
			return
		}
		match, _, ok := s.matchForParty(w, r, user, id)
		if !ok {
			return
		}
		if !match.IsMatch {
			writeError(w, http.StatusConflict, "not_a_match")
			return
		}

		msgs, err := s.store.ListChatMessages(r.Context(), match.ID, before, limit)
		if err != nil {
			s.internalError(w, r, "loading chat", err)
			return
		}
		writeJSON(w, http.StatusOK, chatView{MatchID: match.ID, Messages: msgs})
	})
}

// POST /api/chat/{id}/messages - stores the message and pushes it to the
// other party's open websocket connections
func (s *server) sendChatMessageHandler() http.HandlerFunc {
	return s.authenticate(func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		var req chatMessageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if err := requestValidator.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		id, ok := matchIDFromPath(w, r)
		if !ok {
			return
		}
		match, pet, ok := s.matchForParty(w, r, user, id)
		if !ok {
			return
		}
		if !match.IsMatch {
			writeError(w, http.StatusConflict, "not_a_match")
			return
		}

		msg := &ChatMessage{
			ID:         uuid.New(),
			MatchID:    match.ID,
			SenderID:   user.ID,
			SenderType: user.UserType,
			Body:       req.Message,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.store.CreateChatMessage(r.Context(), msg); err != nil {
			s.internalError(w, r, "saving chat message", err)
			return
		}

		if to, ok := counterparty(user, match, pet); ok {
			delivered := s.hub.sendToUser(to, ServerEvent{Type: "chat_message", Data: msg})
			s.log.Debug("chat message pushed",
				zap.String("match_id", match.ID.String()),
				zap.Int("connections", delivered),
			)
		}

		writeJSON(w, http.StatusCreated, msg)
	})
}
