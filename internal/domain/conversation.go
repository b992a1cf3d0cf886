package domain

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one side of a question-answering exchange, owned by a
// single user's history.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
