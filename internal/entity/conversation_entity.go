package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// TurnCitation attributes one evidence fragment used for an assistant turn.
type TurnCitation struct {
	FragmentId string `json:"fragment_id"`
	FileName   string `json:"file_name"`
	Page       *int   `json:"page,omitempty"`
}

// ConversationTurn is a single turn, ordered within its conversation by
// Sequence (oldest first). Citations are only set on assistant turns.
type ConversationTurn struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string // "user" | "assistant"
	Content        string
	Sequence       int
	Citations      []TurnCitation
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
