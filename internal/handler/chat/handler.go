package chat

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatService "github.com/jaidee/backend/internal/service/chat"
	"github.com/jaidee/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/session", h.handleCreateSession)
	r.Get("/chat/session/{sessionID}/history", h.handleHistory)
	r.Post("/chat/session/{sessionID}/reset", h.handleResetSession)
	r.Delete("/chat/session/{sessionID}", h.handleDeleteSession)
}

type chatResponse struct {
	Reply     string   `json:"reply"`
	Parts     []string `json:"parts"`
	SessionID string   `json:"sessionId"`
}

// handleChat 处理一轮对话，未带 sessionId 时自动创建会话
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
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

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		session, err := h.chatSvc.CreateSession(r.Context())
		if err != nil {
			log.Printf("[chat] create session failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, utils.InternalError)
			return
		}
		sessionID = session.ID
	}

	reply, err := h.chatSvc.Reply(r.Context(), sessionID, payload.Message)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Reply:     reply.Text,
		Parts:     reply.Parts,
		SessionID: reply.SessionID,
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		log.Printf("[chat] create session failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, utils.InternalError)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleHistory 返回会话历史
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"turns":     turns,
	})
}

// handleResetSession 清空会话历史，会话 ID 保持可用
func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.ResetSession(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteSession 删除会话及其历史
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.DeleteSession(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, utils.MessageRequired)
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, "session not found")
	default:
		log.Printf("[chat] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, utils.InternalError)
	}
}
