package diary

import (
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	emotionAnalysis "github.com/jaidee/backend/internal/analysis/emotion"
	riskAnalysis "github.com/jaidee/backend/internal/analysis/risk"
	emotionService "github.com/jaidee/backend/internal/service/emotion"
	riskService "github.com/jaidee/backend/internal/service/risk"
	"github.com/jaidee/backend/pkg/utils"
)

// Helpline 泰国心理健康热线
const Helpline = "1323"

// Handler 日记分析的HTTP处理器
type Handler struct {
	riskSvc    *riskService.Service
	emotionSvc *emotionService.Service
}

// New 创建日记处理器
func New(riskSvc *riskService.Service, emotionSvc *emotionService.Service) *Handler {
	return &Handler{riskSvc: riskSvc, emotionSvc: emotionSvc}
}

// RegisterRoutes 注册日记路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/diary", h.handleDiary)
}

type diaryResponse struct {
	Risk         riskAnalysis.Level    `json:"risk"`
	Emotion      string                `json:"emotion"`
	EmotionLabel emotionAnalysis.Label `json:"emotionLabel"`
	Helpline     string                `json:"helpline,omitempty"`
}

// handleDiary 对日记同时做风险分级与情绪分类，结果不落库
func (h *Handler) handleDiary(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.InvalidBody)
		return
	}

	text := strings.TrimSpace(payload.Message)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, utils.MessageRequired)
		return
	}

	var (
		wg    sync.WaitGroup
		level riskAnalysis.Level
		label emotionAnalysis.Label
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		level = h.riskSvc.Classify(r.Context(), text)
	}()
	go func() {
		defer wg.Done()
		label = h.emotionSvc.Classify(r.Context(), text)
	}()
	wg.Wait()

	resp := diaryResponse{
		Risk:         level,
		Emotion:      label.Thai(),
		EmotionLabel: label,
	}
	if level == riskAnalysis.High {
		resp.Helpline = Helpline
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}
