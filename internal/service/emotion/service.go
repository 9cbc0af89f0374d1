package emotion

import (
	"context"
	"fmt"
	"log"
	"strings"

	analysis "github.com/jaidee/backend/internal/analysis/emotion"
	"github.com/jaidee/backend/internal/service/ai"
)

// Config 控制情绪分析服务的行为。
type Config struct {
	Enabled   bool
	MaxTokens int
}

// Service 使用大模型对日记情绪进行分类，并在必要时回退到启发式规则。
type Service struct {
	gateway   ai.Gateway
	enabled   bool
	maxTokens int
	system    string
	fallback  func(text string) analysis.Decision
}

// NewService 创建情绪分析服务。gateway 为 nil 时只使用关键词规则。
func NewService(gateway ai.Gateway, cfg Config) *Service {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16
	}

	return &Service{
		gateway:   gateway,
		enabled:   cfg.Enabled && gateway != nil,
		maxTokens: maxTokens,
		system:    fmt.Sprintf(emotionSystemPrompt, analysis.ThaiVocabulary()),
		fallback:  analysis.Analyze,
	}
}

// Enabled 返回是否会调用大模型。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Classify 返回日记文本的情绪标签，结果总是词表中的一个。
func (s *Service) Classify(ctx context.Context, text string) analysis.Label {
	text = strings.TrimSpace(text)
	if text == "" {
		return analysis.Default
	}
	if !s.Enabled() {
		return s.heuristic(text)
	}

	raw, err := s.gateway.Complete(ctx, ai.Request{
		System:    s.system,
		Prompt:    text,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		log.Printf("[emotion] gateway failed, use fallback: %v", err)
		return s.heuristic(text)
	}

	label, ok := analysis.ParseLabel(raw)
	if !ok {
		log.Printf("[emotion] anomaly: unparseable output %q, use fallback", ai.Snippet(raw))
		return s.heuristic(text)
	}
	return label
}

func (s *Service) heuristic(text string) analysis.Label {
	decision := s.fallback(text)
	if decision.Score <= 0 {
		return analysis.Default
	}
	return decision.Emotion
}

const emotionSystemPrompt = "คุณเป็นผู้ช่วยวิเคราะห์อารมณ์จากบันทึกประจำวัน " +
	"อ่านข้อความของผู้ใช้แล้วเลือกอารมณ์ที่ตรงที่สุดเพียงหนึ่งคำจากรายการนี้: %s\n" +
	"ตอบเฉพาะคำนั้นคำเดียว ห้ามอธิบายเพิ่มเติม"
