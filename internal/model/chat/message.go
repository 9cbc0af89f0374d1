package chat

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation. Turns are values and are never
// mutated after they are appended to a history.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserTurn builds a user turn stamped with the current UTC time.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now().UTC()}
}

// AssistantTurn builds an assistant turn stamped with the current UTC time.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text, CreatedAt: time.Now().UTC()}
}
