package activity

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jaidee/backend/internal/service/ai"
)

// Config 控制活动推荐服务。
type Config struct {
	MaxTokens int
}

// Recommendation is the suggestion for one mood score.
type Recommendation struct {
	Score    float64
	Band     Band
	Text     string
	Fallback bool
}

// Service 根据心情分数推荐活动。
type Service struct {
	gateway   ai.Gateway
	maxTokens int
}

// NewService 创建活动推荐服务。
func NewService(gateway ai.Gateway, cfg Config) *Service {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &Service{gateway: gateway, maxTokens: maxTokens}
}

// Recommend clamps score, picks its band and asks the model for suggestions.
// A failed or empty answer falls back to the band's static text.
func (s *Service) Recommend(ctx context.Context, score float64) Recommendation {
	score = Clamp(score)
	band := BandFor(score)

	rec := Recommendation{Score: score, Band: band}

	raw, err := s.gateway.Complete(ctx, ai.Request{
		System:    activitySystemPrompt,
		Prompt:    buildActivityPrompt(score, band),
		MaxTokens: s.maxTokens,
	})
	text := strings.TrimSpace(raw)
	if err != nil || text == "" {
		if err != nil {
			log.Printf("[activity] gateway failed for score=%g, use band fallback: %v", score, err)
		}
		rec.Text = band.Fallback
		rec.Fallback = true
		return rec
	}

	rec.Text = text
	return rec
}

func buildActivityPrompt(score float64, band Band) string {
	// 不做四舍五入，避免边界分数与所属区间矛盾
	return fmt.Sprintf("คะแนนอารมณ์วันนี้ของผู้ใช้คือ %s จาก 5 (ช่วง %s)\nแนวทางกิจกรรม: %s\nช่วยแนะนำกิจกรรมให้หน่อย",
		strconv.FormatFloat(score, 'f', -1, 64), band.Label, band.Theme)
}

const activitySystemPrompt = "คุณคือเพื่อนสนิทที่ช่วยแนะนำกิจกรรมตามระดับอารมณ์ของผู้ใช้ " +
	"แนะนำกิจกรรมที่ทำได้จริง 2-3 อย่าง ใช้ภาษาอ่อนโยนเป็นกันเอง ตอบสั้น ๆ ไม่เกิน 3 ประโยค " +
	"หากอารมณ์ต่ำมาก ให้ชวนพูดคุยกับคนที่ไว้ใจหรือโทรสายด่วนสุขภาพจิต 1323"
