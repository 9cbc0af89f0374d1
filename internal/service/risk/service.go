package risk

import (
	"context"
	"log"
	"strings"

	analysis "github.com/jaidee/backend/internal/analysis/risk"
	"github.com/jaidee/backend/internal/service/ai"
)

// Config 控制风险分级服务。
type Config struct {
	ExtraPhrases []string
	MaxTokens    int
}

// Service 先做关键词扫描，未命中时再交给大模型判断。
type Service struct {
	gateway   ai.Gateway
	phrases   []string
	maxTokens int
}

// NewService 创建风险分级服务，ExtraPhrases 会追加到内置短语表之后。
func NewService(gateway ai.Gateway, cfg Config) *Service {
	phrases := make([]string, 0, len(analysis.DefaultPhrases)+len(cfg.ExtraPhrases))
	phrases = append(phrases, analysis.DefaultPhrases...)
	for _, phrase := range cfg.ExtraPhrases {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			phrases = append(phrases, phrase)
		}
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16
	}

	return &Service{gateway: gateway, phrases: phrases, maxTokens: maxTokens}
}

// Classify 返回日记文本的风险等级。关键词命中直接判 High，不调用模型；
// 模型失败或输出无法解析时按 Normal 处理。
func (s *Service) Classify(ctx context.Context, text string) analysis.Level {
	text = strings.TrimSpace(text)
	if text == "" {
		return analysis.Normal
	}

	if phrase, ok := analysis.Scan(text, s.phrases); ok {
		log.Printf("[risk] keyword hit %q, level=%s", phrase, analysis.High)
		return analysis.High
	}

	raw, err := s.gateway.Complete(ctx, ai.Request{
		System:    riskSystemPrompt,
		Prompt:    text,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		log.Printf("[risk] gateway failed, default to %s: %v", analysis.Normal, err)
		return analysis.Normal
	}

	level, ok := analysis.ParseLevel(raw)
	if !ok {
		log.Printf("[risk] anomaly: unparseable output %q, default to %s", ai.Snippet(raw), analysis.Normal)
		return analysis.Normal
	}
	return level
}

const riskSystemPrompt = "คุณเป็นผู้ช่วยประเมินความเสี่ยงด้านสุขภาพจิตจากบันทึกประจำวัน " +
	"อ่านข้อความของผู้ใช้แล้วประเมินความเสี่ยงต่อการทำร้ายตัวเองหรือการฆ่าตัวตาย\n" +
	"ตอบเพียงคำเดียวเท่านั้น: High, Low หรือ Normal\n" +
	"High = มีสัญญาณอยากตายหรือทำร้ายตัวเอง, Low = มีความทุกข์หรือหมดหวังแต่ไม่มีสัญญาณอันตราย, Normal = ไม่มีความเสี่ยง\n" +
	"ห้ามอธิบายเพิ่มเติม"
