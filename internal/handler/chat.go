package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/smartsched/scheduler-server-go/internal/errors"
	"github.com/smartsched/scheduler-server-go/internal/httputil"
	"github.com/smartsched/scheduler-server-go/internal/service"
)

type ChatHandler struct {
	scheduler  *service.SchedulerService
	sessionTTL time.Duration
}

func NewChatHandler(scheduler *service.SchedulerService, sessionTTL time.Duration) *ChatHandler {
	return &ChatHandler{scheduler: scheduler, sessionTTL: sessionTTL}
}

// POST /chat
// One user message in, one assistant reply out.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("invalid request body"))
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		httputil.WriteError(w, apperrors.MissingRequired("message"))
		return
	}

	sessionID := ensureSession(w, r, h.sessionTTL)
	reply := h.scheduler.ProcessMessage(r.Context(), sessionID, message)

	log.Debug().Str("sessionId", sessionID).Int("messageLen", len(message)).Msg("chat turn handled")

	writeJSON(w, http.StatusOK, map[string]any{
		"response": reply,
		"success":  true,
	})
}

// POST /reset
// Discards the conversation tied to the caller's session cookie.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		h.scheduler.Reset(cookie.Value)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
	})
}
