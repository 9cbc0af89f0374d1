package chat

import "strings"

// SplitReply breaks a model answer into at most maxParts chat bubbles.
// Paragraphs are separated by blank lines; anything beyond the limit is
// folded into the last part.
func SplitReply(text string, maxParts int) []string {
	if maxParts < 1 {
		maxParts = 1
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		parts   []string
		current []string
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		parts = append(parts, strings.Join(current, "\n"))
		current = current[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		current = append(current, trimmed)
	}
	flush()

	if len(parts) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	if len(parts) > maxParts {
		tail := strings.Join(parts[maxParts-1:], "\n\n")
		parts = append(parts[:maxParts-1], tail)
	}
	return parts
}
