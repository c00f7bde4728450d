package dto

import "github.com/google/uuid"

// GenerateTitleMessage is the watermill payload asking the title worker to
// name a conversation after its first exchange.
type GenerateTitleMessage struct {
	ConversationId uuid.UUID `json:"conversation_id"`
	UserId         uuid.UUID `json:"user_id"`
	Question       string    `json:"question"`
}
