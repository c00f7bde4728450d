package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventChatAnswered        = "CHAT_ANSWERED"
	EventConversationCreated = "CONVERSATION_CREATED"
)

// NewChatAnsweredEvent is emitted once an assistant turn has been persisted,
// so listeners can notify connected clients that the answer is ready.
func NewChatAnsweredEvent(userId, conversationId, turnId uuid.UUID) Event {
	return BaseEvent{
		Type: EventChatAnswered,
		Data: map[string]interface{}{
			"user_id":         userId.String(),
			"conversation_id": conversationId.String(),
			"turn_id":         turnId.String(),
		},
		OccurredAt: time.Now(),
	}
}

// NewConversationCreatedEvent is emitted after the first exchange of a
// conversation, triggering asynchronous title generation.
func NewConversationCreatedEvent(userId, conversationId uuid.UUID, question string) Event {
	return BaseEvent{
		Type: EventConversationCreated,
		Data: map[string]interface{}{
			"user_id":         userId.String(),
			"conversation_id": conversationId.String(),
			"question":        question,
		},
		OccurredAt: time.Now(),
	}
}
