package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/pkg/logger"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/internal/websocket"
	"docuchat-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const maxTitleLength = 80

type ITitleWorker interface {
	Consume(ctx context.Context) error
}

// titleWorker names conversations asynchronously after their first exchange.
// A failed generation leaves the default title in place.
type titleWorker struct {
	pubSub      *gochannel.GoChannel
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	delivery    NotificationDelivery
	logger      logger.ILogger
}

func NewTitleWorker(
	pubSub *gochannel.GoChannel,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	delivery NotificationDelivery,
	log logger.ILogger,
) ITitleWorker {
	return &titleWorker{
		pubSub:      pubSub,
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		delivery:    delivery,
		logger:      log,
	}
}

func (tw *titleWorker) Consume(ctx context.Context) error {
	messages, err := tw.pubSub.Subscribe(ctx, constant.GenerateTitleTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			tw.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (tw *titleWorker) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.GenerateTitleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		tw.logger.Warn("TitleWorker", "invalid payload, dropping", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retriable
		return
	}

	uow := tw.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: payload.ConversationId})
	if err != nil {
		tw.logger.Warn("TitleWorker", "conversation gone, dropping", map[string]interface{}{
			"conversation_id": payload.ConversationId,
		})
		msg.Ack()
		return
	}

	title, err := tw.llmProvider.Generate(ctx,
		fmt.Sprintf(constant.TitlePrompt, payload.Question),
		llm.WithTemperature(0.3),
	)
	if err != nil {
		tw.logger.Warn("TitleWorker", "title generation failed, keeping default", map[string]interface{}{
			"conversation_id": payload.ConversationId,
			"error":           err.Error(),
		})
		msg.Ack()
		return
	}

	title = sanitizeTitle(title)
	if title == "" {
		msg.Ack()
		return
	}

	now := time.Now()
	conversation.Title = title
	conversation.UpdatedAt = &now
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		tw.logger.Error("TitleWorker", "failed to save title", map[string]interface{}{
			"conversation_id": payload.ConversationId,
			"error":           err.Error(),
		})
		msg.Nack() // retriable
		return
	}

	if tw.delivery != nil {
		tw.delivery.Send(payload.UserId, websocket.Notification{
			Type:           websocket.NotificationTitleUpdated,
			ConversationId: conversation.Id,
			Title:          title,
			CreatedAt:      now,
		})
	}

	msg.Ack()
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	return title
}
