package stream

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	chatService "github.com/jaidee/backend/internal/service/chat"
	"github.com/jaidee/backend/pkg/utils"
)

// Handler delivers chat replies part by part via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
	// PartDelay spaces consecutive parts so clients can animate typing.
	PartDelay time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, PartDelay: 600 * time.Millisecond}
}

// RegisterRoutes 注册流式聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.handleStream)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	Index     int    `json:"index"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// handleStream validates like POST /chat, then emits session, part and done events.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.InvalidBody)
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, utils.MessageRequired)
		return
	}

	ctx := r.Context()
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		session, err := h.chatSvc.CreateSession(ctx)
		if err != nil {
			log.Printf("[stream] create session failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.InternalError)
			return
		}
		sessionID = session.ID
	}

	reply, err := h.chatSvc.Reply(ctx, sessionID, payload.Message)
	if err != nil {
		switch {
		case errors.Is(err, chatService.ErrSessionNotFound):
			utils.RespondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, chatService.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, utils.MessageRequired)
		default:
			log.Printf("[stream] reply failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.InternalError)
		}
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	if err := utils.SendSSEEvent(w, flusher, "session", StreamResponse{Event: "session", SessionID: reply.SessionID}); err != nil {
		log.Printf("[stream] %v", err)
		return
	}

	for i, part := range reply.Parts {
		if i > 0 && h.PartDelay > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[stream] client gone for session=%s", reply.SessionID)
				return
			case <-time.After(h.PartDelay):
			}
		}
		if err := utils.SendSSEEvent(w, flusher, "part", StreamResponse{Event: "part", Content: part, Index: i}); err != nil {
			log.Printf("[stream] %v", err)
			return
		}
	}

	if err := utils.SendSSEEvent(w, flusher, "done", StreamResponse{
		Event:     "done",
		Index:     len(reply.Parts),
		SessionID: reply.SessionID,
		Finished:  true,
		Fallback:  reply.Fallback,
	}); err != nil {
		log.Printf("[stream] %v", err)
	}
}
