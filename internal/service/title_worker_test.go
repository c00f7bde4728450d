package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubDelivery struct {
	users         []uuid.UUID
	notifications []websocket.Notification
}

func (s *stubDelivery) Send(userID uuid.UUID, notification websocket.Notification) {
	s.users = append(s.users, userID)
	s.notifications = append(s.notifications, notification)
}

func newTitleFixture(stub *stubLLM) (*memStore, *stubDelivery, *titleWorker) {
	store := newMemStore()
	delivery := &stubDelivery{}
	worker := NewTitleWorker(
		gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		&memFactory{store: store},
		stub,
		delivery,
		nopLogger{},
	).(*titleWorker)
	return store, delivery, worker
}

func titleMessage(t *testing.T, payload dto.GenerateTitleMessage) *message.Message {
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), raw)
}

func TestTitleWorkerSetsTitle(t *testing.T) {
	stub := &stubLLM{generateText: " \"Production Rollout Steps\" \n"}
	store, delivery, worker := newTitleFixture(stub)

	userId := uuid.New()
	conversation := store.seedConversation(userId)

	msg := titleMessage(t, dto.GenerateTitleMessage{
		ConversationId: conversation.Id,
		UserId:         userId,
		Question:       "Where are the rollout steps?",
	})
	worker.processMessage(context.Background(), msg)

	assert.Equal(t, "Production Rollout Steps", store.conversations[conversation.Id].Title)
	assert.NotNil(t, store.conversations[conversation.Id].UpdatedAt)

	assert.Len(t, delivery.notifications, 1)
	assert.Equal(t, userId, delivery.users[0])
	assert.Equal(t, websocket.NotificationTitleUpdated, delivery.notifications[0].Type)
	assert.Equal(t, "Production Rollout Steps", delivery.notifications[0].Title)
}

func TestTitleWorkerKeepsDefaultOnGenerationFailure(t *testing.T) {
	stub := &stubLLM{generateErr: errors.New("model offline")}
	store, delivery, worker := newTitleFixture(stub)

	conversation := store.seedConversation(uuid.New())

	msg := titleMessage(t, dto.GenerateTitleMessage{ConversationId: conversation.Id})
	worker.processMessage(context.Background(), msg)

	assert.Equal(t, constant.DefaultConversationTitle, store.conversations[conversation.Id].Title)
	assert.Empty(t, delivery.notifications)
}

func TestTitleWorkerDropsUnknownConversation(t *testing.T) {
	stub := &stubLLM{generateText: "A Title"}
	_, delivery, worker := newTitleFixture(stub)

	msg := titleMessage(t, dto.GenerateTitleMessage{ConversationId: uuid.New()})
	worker.processMessage(context.Background(), msg)

	assert.Equal(t, 0, stub.generateCalls)
	assert.Empty(t, delivery.notifications)
}

func TestTitleWorkerDropsMalformedPayload(t *testing.T) {
	stub := &stubLLM{generateText: "A Title"}
	_, _, worker := newTitleFixture(stub)

	worker.processMessage(context.Background(), message.NewMessage(watermill.NewUUID(), []byte("not json")))

	assert.Equal(t, 0, stub.generateCalls)
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Rollout Steps", "Rollout Steps"},
		{"surrounding whitespace", "  Rollout Steps \t", "Rollout Steps"},
		{"quoted", `"Rollout Steps"`, "Rollout Steps"},
		{"single quoted", "'Rollout Steps'", "Rollout Steps"},
		{"first line only", "Rollout Steps\nSecond line", "Rollout Steps"},
		{"empty", "   ", ""},
		{"truncated", strings.Repeat("a", 120), strings.Repeat("a", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeTitle(tt.input))
		})
	}
}
