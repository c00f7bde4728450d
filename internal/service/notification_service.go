package service

import (
	"context"
	"strings"
	"time"

	"docuchat-be/internal/pkg/logger"
	"docuchat-be/internal/websocket"
	"docuchat-be/pkg/events"
	pktNats "docuchat-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification websocket.Notification)
}

// NotificationService bridges the NATS event bus onto websocket delivery, so
// an answer produced on one instance reaches a user connected to another.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "no NATS subscriber, notifications disabled", nil)
		return
	}

	err := s.subscriber.Subscribe("events."+events.EventChatAnswered, "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userId, err := uuid.Parse(stringField(payload, "user_id"))
	if err != nil {
		// Malformed event, never retriable
		s.logger.Warn("NotificationService", "event without valid user_id", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	conversationId, _ := uuid.Parse(stringField(payload, "conversation_id"))
	turnId, _ := uuid.Parse(stringField(payload, "turn_id"))

	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	if typeCode != events.EventChatAnswered {
		return nil
	}

	s.delivery.Send(userId, websocket.Notification{
		Type:           websocket.NotificationAnswerReady,
		ConversationId: conversationId,
		TurnId:         turnId,
		CreatedAt:      time.Now(),
	})
	return nil
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
