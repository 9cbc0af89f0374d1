package activity

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	activityService "github.com/jaidee/backend/internal/service/activity"
	"github.com/jaidee/backend/pkg/utils"
)

const invalidScoreMessage = "คะแนนต้องเป็นตัวเลขระหว่าง 0 ถึง 5"

// Handler 心情分数活动推荐的HTTP处理器
type Handler struct {
	activitySvc *activityService.Service
}

// New 创建活动推荐处理器
func New(activitySvc *activityService.Service) *Handler {
	return &Handler{activitySvc: activitySvc}
}

// RegisterRoutes 注册活动推荐路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/pont", h.handleRecommend)
}

type recommendResponse struct {
	Reply string  `json:"reply"`
	Score float64 `json:"score"`
	Band  string  `json:"band"`
}

// handleRecommend 接受字符串或数字形式的分数
func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.InvalidBody)
		return
	}

	raw, ok := scoreText(payload.Message)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, invalidScoreMessage)
		return
	}

	score, err := activityService.ParseScore(raw)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, invalidScoreMessage)
		return
	}

	rec := h.activitySvc.Recommend(r.Context(), score)
	utils.RespondJSON(w, http.StatusOK, recommendResponse{
		Reply: rec.Text,
		Score: rec.Score,
		Band:  rec.Band.Label,
	})
}

// scoreText 取出 JSON 字符串的内容，或数字的原始文本
func scoreText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", false
		}
		return text, true
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return "", false
	}
	return number.String(), true
}
