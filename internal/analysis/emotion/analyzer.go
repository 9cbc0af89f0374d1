package emotion

import (
	"strings"
)

// Decision 给出关键词启发式的情绪识别结果。
type Decision struct {
	Emotion Label
	Score   int
}

var keywordBuckets = map[Label][]string{
	Joyful: {
		"ดีใจ", "มีความสุข", "สุขใจ", "สนุก", "หัวเราะ", "ยิ้ม", "เย้", "ปลื้ม", "ถูกใจ",
		"happy", "glad", "yay", "fun",
	},
	Sad: {
		"เศร้า", "เสียใจ", "ร้องไห้", "ผิดหวัง", "เหงา", "ใจสลาย", "น้อยใจ", "หดหู่", "ท้อ",
		"sad", "cry", "lonely", "upset",
	},
	Anxious: {
		"กังวล", "กลัว", "เครียด", "ไม่สบายใจ", "กระวนกระวาย", "ว้าวุ่น", "ห่วง", "ใจไม่ดี",
		"anxious", "worried", "nervous", "stress",
	},
	Angry: {
		"โกรธ", "โมโห", "หงุดหงิด", "รำคาญ", "เกลียด", "ฉุน", "ไม่พอใจ", "หัวร้อน",
		"angry", "mad", "annoyed", "furious",
	},
	Tired: {
		"เหนื่อย", "อ่อนเพลีย", "หมดแรง", "ง่วง", "ล้า", "เพลีย", "หมดไฟ", "นอนไม่พอ",
		"tired", "exhausted", "sleepy", "burnout",
	},
	Relaxed: {
		"ผ่อนคลาย", "สบายใจ", "สงบ", "ชิล", "พักผ่อน", "สบายๆ", "โล่ง",
		"relaxed", "calm", "chill", "peaceful",
	},
	Encouraged: {
		"มีกำลังใจ", "สู้ๆ", "สู้ต่อ", "ภูมิใจ", "มีแรงบันดาลใจ", "ฮึกเหิม", "มีแรง", "ทำได้",
		"encouraged", "motivated", "proud", "hopeful",
	},
}

// Analyze 根据日记文本的关键词推断情绪，没有命中时返回 Default 且 Score 为 0。
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Default}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	// Iterate in vocabulary order so ties resolve the same way every time.
	best := Default
	bestScore := 0
	for _, label := range Labels {
		if s := scores[label]; s > bestScore {
			best = label
			bestScore = s
		}
	}

	if bestScore == 0 {
		return Decision{Emotion: Default}
	}
	return Decision{Emotion: best, Score: bestScore}
}
