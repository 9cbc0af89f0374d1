package risk

import (
	"strings"
	"unicode"
)

// Level is the coarse self-harm risk of a diary entry.
type Level string

const (
	High   Level = "High"
	Low    Level = "Low"
	Normal Level = "Normal"
)

// Levels lists every valid level in severity order.
var Levels = []Level{High, Low, Normal}

// DefaultPhrases is the closed set of Thai (and a few English) phrases that
// mark an entry as high risk without consulting a model. Matching is a
// case-sensitive substring test.
var DefaultPhrases = []string{
	"อยากตาย",
	"ฆ่าตัวตาย",
	"ไม่อยากมีชีวิตอยู่",
	"ไม่อยากอยู่แล้ว",
	"อยากหายไปจากโลกนี้",
	"จบชีวิต",
	"ทำร้ายตัวเอง",
	"กรีดข้อมือ",
	"กินยาตาย",
	"ผูกคอ",
	"โดดตึก",
	"ตายไปคงดี",
	"kill myself",
	"want to die",
	"end my life",
}

// Scan reports the first phrase contained in text.
func Scan(text string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		if strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// ParseLevel maps raw model output onto a Level. Only an exact label (after
// trimming quotes and punctuation) or a label as the first word is accepted.
func ParseLevel(raw string) (Level, bool) {
	normalized := normalize(raw)
	if normalized == "" {
		return "", false
	}
	if level, ok := lookup(normalized); ok {
		return level, true
	}

	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if len(fields) == 0 {
		return "", false
	}
	return lookup(fields[0])
}

func lookup(word string) (Level, bool) {
	switch word {
	case "high", "สูง":
		return High, true
	case "low", "ต่ำ":
		return Low, true
	case "normal", "ปกติ":
		return Normal, true
	default:
		return "", false
	}
}

func normalize(raw string) string {
	trimmed := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '`'
	})
	return strings.ToLower(trimmed)
}
