package emotion

import (
	"strings"
	"unicode"
)

// Label 表示日记情绪的固定词表。
type Label string

const (
	Joyful     Label = "Joyful"
	Sad        Label = "Sad"
	Anxious    Label = "Anxious"
	Angry      Label = "Angry"
	Tired      Label = "Tired"
	Relaxed    Label = "Relaxed"
	Encouraged Label = "Encouraged"
)

// Default is returned when neither the model nor the keywords give a signal.
const Default = Relaxed

// Labels lists the vocabulary in its canonical order.
var Labels = []Label{Joyful, Sad, Anxious, Angry, Tired, Relaxed, Encouraged}

var thaiNames = map[Label]string{
	Joyful:     "ดีใจ",
	Sad:        "เศร้า",
	Anxious:    "กังวล",
	Angry:      "โกรธ",
	Tired:      "เหนื่อย",
	Relaxed:    "ผ่อนคลาย",
	Encouraged: "มีกำลังใจ",
}

// Thai returns the Thai word the model is asked to answer with.
func (l Label) Thai() string {
	return thaiNames[l]
}

// ThaiVocabulary joins the Thai words with ", " for prompts.
func ThaiVocabulary() string {
	words := make([]string, 0, len(Labels))
	for _, label := range Labels {
		words = append(words, thaiNames[label])
	}
	return strings.Join(words, ", ")
}

// ParseLabel maps raw model output onto the vocabulary. An exact English or
// Thai label is accepted; otherwise the text must mention exactly one label
// and no label may be negated.
func ParseLabel(raw string) (Label, bool) {
	normalized := strings.ToLower(strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '`'
	}))
	if normalized == "" {
		return "", false
	}

	for _, label := range Labels {
		if normalized == strings.ToLower(string(label)) || normalized == thaiNames[label] {
			return label, true
		}
	}

	var found []Label
	for _, label := range Labels {
		hitEN, negatedEN := mention(normalized, strings.ToLower(string(label)))
		hitTH, negatedTH := mention(normalized, thaiNames[label])
		// 否定形式（如 "ไม่เศร้า"）含义不明确，整体拒绝
		if negatedEN || negatedTH {
			return "", false
		}
		if hitEN || hitTH {
			found = append(found, label)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return "", false
}

// 泰语否定词直接连写在词前，英语否定词需独立成词。
const thaiNegation = "ไม่"

var englishNegations = map[string]bool{"not": true, "no": true, "never": true}

// mention reports whether word occurs in text and whether any occurrence is
// directly preceded by a negation.
func mention(text, word string) (hit, negated bool) {
	for offset := 0; ; {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return hit, negated
		}
		start := offset + idx
		hit = true

		before := strings.TrimRightFunc(text[:start], unicode.IsSpace)
		if strings.HasSuffix(before, thaiNegation) {
			negated = true
		}
		if fields := strings.Fields(before); len(fields) > 0 && englishNegations[fields[len(fields)-1]] {
			negated = true
		}
		offset = start + len(word)
	}
}
