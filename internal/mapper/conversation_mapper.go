package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationMapper struct{}

func NewConversationMapper() *ConversationMapper {
	return &ConversationMapper{}
}

// Conversation Mappers

func (m *ConversationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *ConversationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// Turn Mappers

func (m *ConversationMapper) TurnToEntity(t *model.ConversationTurn) (*entity.ConversationTurn, error) {
	if t == nil {
		return nil, nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		dt := t.DeletedAt.Time
		deletedAt = &dt
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		ut := t.UpdatedAt
		updatedAt = &ut
	}

	var citations []entity.TurnCitation
	if len(t.Citations) > 0 {
		if err := json.Unmarshal(t.Citations, &citations); err != nil {
			return nil, fmt.Errorf("unmarshal turn citations: %w", err)
		}
	}

	return &entity.ConversationTurn{
		Id:             t.Id,
		ConversationId: t.ConversationId,
		Role:           t.Role,
		Content:        t.Content,
		Sequence:       t.Sequence,
		Citations:      citations,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      t.DeletedAt.Valid,
	}, nil
}

func (m *ConversationMapper) TurnToModel(t *entity.ConversationTurn) (*model.ConversationTurn, error) {
	if t == nil {
		return nil, nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	var citations datatypes.JSON
	if len(t.Citations) > 0 {
		raw, err := json.Marshal(t.Citations)
		if err != nil {
			return nil, fmt.Errorf("marshal turn citations: %w", err)
		}
		citations = datatypes.JSON(raw)
	}

	return &model.ConversationTurn{
		Id:             t.Id,
		ConversationId: t.ConversationId,
		Role:           t.Role,
		Content:        t.Content,
		Sequence:       t.Sequence,
		Citations:      citations,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}, nil
}

func (m *ConversationMapper) TurnsToEntities(turns []*model.ConversationTurn) ([]*entity.ConversationTurn, error) {
	entities := make([]*entity.ConversationTurn, len(turns))
	for i, t := range turns {
		e, err := m.TurnToEntity(t)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
