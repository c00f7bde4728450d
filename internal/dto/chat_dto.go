package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	Question       string     `json:"question" validate:"required"`
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
	TopK           int        `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
	Alpha          *float64   `json:"alpha,omitempty" validate:"omitempty,min=0,max=1"`
	UseMMR         *bool      `json:"use_mmr,omitempty"`
	Stream         bool       `json:"stream,omitempty"`
}

type CitationDTO struct {
	FragmentId string `json:"fragment_id"`
	FileName   string `json:"file_name"`
	Page       *int   `json:"page,omitempty"`
}

type SendChatResponse struct {
	ConversationId uuid.UUID     `json:"conversation_id"`
	Answer         string        `json:"answer"`
	Citations      []CitationDTO `json:"citations,omitempty"`
	ContextHeader  string        `json:"context_header,omitempty"`
}

type GetAllConversationsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetConversationTurnResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Sequence  int           `json:"sequence"`
	CreatedAt time.Time     `json:"created_at"`
	Citations []CitationDTO `json:"citations,omitempty"`
}

type GetConversationResponse struct {
	Id        uuid.UUID                      `json:"id"`
	Title     string                         `json:"title"`
	CreatedAt time.Time                      `json:"created_at"`
	Turns     []*GetConversationTurnResponse `json:"turns"`
}

// StreamEvent is one SSE payload. Type is "delta" while tokens arrive and
// "done" for the terminal event carrying the full answer and citations.
type StreamEvent struct {
	Type           string        `json:"type"`
	Delta          string        `json:"delta,omitempty"`
	ConversationId *uuid.UUID    `json:"conversation_id,omitempty"`
	Answer         string        `json:"answer,omitempty"`
	Citations      []CitationDTO `json:"citations,omitempty"`
}
