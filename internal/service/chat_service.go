package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/pkg/logger"
	"docuchat-be/internal/repository/memory"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/pkg/embedding"
	"docuchat-be/pkg/events"
	"docuchat-be/pkg/llm"
	pktNats "docuchat-be/pkg/nats"
	"docuchat-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IChatService interface {
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendChatStream(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest, onDelta llm.DeltaFunc) (*dto.SendChatResponse, error)
	GetAllConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error)
	GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetConversationResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error
}

type chatService struct {
	uowFactory    unitofwork.RepositoryFactory
	engine        *retrieval.Engine
	condenser     *retrieval.Condenser
	llmProvider   llm.LLMProvider
	historyCache  *memory.HistoryCache
	natsPublisher *pktNats.Publisher
	pubSub        *gochannel.GoChannel
	defaults      retrieval.Params
	logger        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	historyCache *memory.HistoryCache,
	natsPublisher *pktNats.Publisher,
	pubSub *gochannel.GoChannel,
	defaults retrieval.Params,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:    uowFactory,
		engine:        retrieval.NewEngine(newChunkStore(uowFactory), newProviderEmbedder(embeddingProvider), log.Zap()),
		condenser:     retrieval.NewCondenser(llmProvider, log.Zap()),
		llmProvider:   llmProvider,
		historyCache:  historyCache,
		natsPublisher: natsPublisher,
		pubSub:        pubSub,
		defaults:      defaults,
		logger:        log,
	}
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	return cs.answer(ctx, userId, request, nil)
}

func (cs *chatService) SendChatStream(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest, onDelta llm.DeltaFunc) (*dto.SendChatResponse, error) {
	return cs.answer(ctx, userId, request, onDelta)
}

// answer runs the full exchange. A nil onDelta means buffered generation;
// otherwise tokens are forwarded as they arrive and the final text is
// identical to what the buffered path would have produced.
func (cs *chatService) answer(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest, onDelta llm.DeltaFunc) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	params := cs.resolveParams(request)

	// 1. Resolve or create the conversation
	conversation, err := cs.ensureConversation(ctx, uow, userId, request.ConversationId)
	if err != nil {
		return nil, err
	}

	// 2. Load turn history (cache first)
	history, err := cs.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		return nil, err
	}

	// 3. Metadata fast path: "what documents did I upload" never hits the LLM
	if isListDocumentsQuestion(request.Question) {
		answer, err := cs.listDocumentsAnswer(ctx, uow, userId)
		if err != nil {
			return nil, err
		}
		if onDelta != nil {
			if err := onDelta(answer); err != nil {
				return nil, err
			}
		}
		return cs.finishExchange(ctx, userId, conversation, request.Question, answer, nil, len(history) == 0)
	}

	// 4. Condense the follow-up into a standalone question
	standalone := cs.condenser.Condense(ctx, toEngineTurns(history), request.Question)

	// 5. Retrieve evidence
	selection, err := cs.engine.Retrieve(ctx, userId, standalone, params)
	if err != nil {
		return nil, err
	}

	// 6. Generate the answer over the evidence block
	messages := cs.buildMessages(history, selection.Evidence, request.Question)

	var answer string
	if onDelta != nil {
		answer, err = cs.llmProvider.Stream(ctx, messages, onDelta)
	} else {
		answer, err = cs.llmProvider.Chat(ctx, messages)
	}
	if err != nil {
		return nil, &retrieval.CollaboratorError{Op: "answer generation", Err: err}
	}

	citations := toCitationEntities(retrieval.FragmentCitations(selection.Fragments))

	// 7. Persist both turns only now that generation fully succeeded
	response, err := cs.finishExchange(ctx, userId, conversation, request.Question, answer, citations, len(history) == 0)
	if err != nil {
		return nil, err
	}
	response.ContextHeader = selection.Evidence.Header
	return response, nil
}

func (cs *chatService) resolveParams(request *dto.SendChatRequest) retrieval.Params {
	params := cs.defaults
	if request.TopK > 0 {
		params.TopK = request.TopK
	}
	if request.Alpha != nil {
		params.Alpha = *request.Alpha
	}
	if request.UseMMR != nil {
		params.UseMMR = *request.UseMMR
	}
	return params
}

func (cs *chatService) ensureConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, conversationId *uuid.UUID) (*entity.Conversation, error) {
	if conversationId != nil {
		return uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: *conversationId},
			specification.UserOwnedBy{UserID: userId},
		)
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultConversationTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]*entity.ConversationTurn, error) {
	if turns, found := cs.historyCache.Get(conversationId); found {
		return turns, nil
	}

	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "sequence", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	cs.historyCache.Save(conversationId, turns)
	return turns, nil
}

func (cs *chatService) listDocumentsAnswer(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (string, error) {
	docs, err := uow.DocumentChunkRepository().DistinctDocuments(ctx, userId)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "You haven't uploaded any documents yet.", nil
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.FileName
	}
	return "You uploaded: " + strings.Join(names, ", "), nil
}

func (cs *chatService) buildMessages(history []*entity.ConversationTurn, evidence retrieval.EvidenceBlock, question string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: constant.TurnRoleSystem, Content: constant.RAGSystemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	evidenceText := evidence.Header + "\n" + evidence.Body
	messages = append(messages, llm.Message{
		Role:    constant.TurnRoleUser,
		Content: fmt.Sprintf(constant.RAGAnswerPrompt, evidenceText, question),
	})
	return messages
}

// finishExchange appends the user and assistant turns in one transaction and
// fires the post-commit side effects (cache invalidation, title generation,
// answer-ready event).
func (cs *chatService) finishExchange(
	ctx context.Context,
	userId uuid.UUID,
	conversation *entity.Conversation,
	question, answer string,
	citations []entity.TurnCitation,
	firstExchange bool,
) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sequence, err := uow.ConversationTurnRepository().NextSequence(ctx, conversation.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userTurn := &entity.ConversationTurn{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.TurnRoleUser,
		Content:        question,
		Sequence:       sequence,
		CreatedAt:      now,
	}
	assistantTurn := &entity.ConversationTurn{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           constant.TurnRoleAssistant,
		Content:        answer,
		Sequence:       sequence + 1,
		Citations:      citations,
		CreatedAt:      now,
	}

	if err := uow.ConversationTurnRepository().CreateBulk(ctx, []*entity.ConversationTurn{userTurn, assistantTurn}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.historyCache.Invalidate(conversation.Id)

	if firstExchange {
		cs.publishTitleRequest(conversation.Id, userId, question)
	}
	cs.publishAnswered(ctx, userId, conversation.Id, assistantTurn.Id)

	return &dto.SendChatResponse{
		ConversationId: conversation.Id,
		Answer:         answer,
		Citations:      toCitationDTOs(citations),
	}, nil
}

func (cs *chatService) publishTitleRequest(conversationId, userId uuid.UUID, question string) {
	payload, err := json.Marshal(dto.GenerateTitleMessage{
		ConversationId: conversationId,
		UserId:         userId,
		Question:       question,
	})
	if err != nil {
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := cs.pubSub.Publish(constant.GenerateTitleTopic, msg); err != nil {
		cs.logger.Warn("ChatService", "failed to publish title request", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
	}
}

func (cs *chatService) publishAnswered(ctx context.Context, userId, conversationId, turnId uuid.UUID) {
	if cs.natsPublisher == nil {
		return
	}
	event := events.NewChatAnsweredEvent(userId, conversationId, turnId)
	if err := cs.natsPublisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("ChatService", "failed to publish answered event", map[string]interface{}{
			"conversation_id": conversationId,
			"error":           err.Error(),
		})
	}
}

func (cs *chatService) GetAllConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllConversationsResponse, 0, len(conversations))
	for _, c := range conversations {
		response = append(response, &dto.GetAllConversationsResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return response, nil
}

func (cs *chatService) GetConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}

	turns, err := uow.ConversationTurnRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "sequence", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turnDTOs := make([]*dto.GetConversationTurnResponse, 0, len(turns))
	for _, t := range turns {
		turnDTOs = append(turnDTOs, &dto.GetConversationTurnResponse{
			Id:        t.Id,
			Role:      t.Role,
			Content:   t.Content,
			Sequence:  t.Sequence,
			CreatedAt: t.CreatedAt,
			Citations: toCitationDTOs(t.Citations),
		})
	}

	return &dto.GetConversationResponse{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		Turns:     turnDTOs,
	}, nil
}

func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}

	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}

	cs.historyCache.Invalidate(conversationId)
	return nil
}

// isListDocumentsQuestion detects the metadata intent: the question asks what
// documents were uploaded, which is answered from the index, not the LLM.
func isListDocumentsQuestion(question string) bool {
	q := strings.ToLower(question)
	if !strings.Contains(q, "document") {
		return false
	}
	if strings.Contains(q, "list") {
		return true
	}
	return strings.Contains(q, "what") && strings.Contains(q, "upload")
}

func toEngineTurns(history []*entity.ConversationTurn) []retrieval.Turn {
	turns := make([]retrieval.Turn, len(history))
	for i, t := range history {
		turns[i] = retrieval.Turn{
			Role:     t.Role,
			Content:  t.Content,
			Sequence: t.Sequence,
		}
	}
	return turns
}

func toCitationEntities(citations []retrieval.FragmentCitation) []entity.TurnCitation {
	out := make([]entity.TurnCitation, len(citations))
	for i, c := range citations {
		out[i] = entity.TurnCitation{
			FragmentId: c.FragmentID,
			FileName:   c.FileName,
			Page:       c.Page,
		}
	}
	return out
}

func toCitationDTOs(citations []entity.TurnCitation) []dto.CitationDTO {
	if len(citations) == 0 {
		return nil
	}
	out := make([]dto.CitationDTO, len(citations))
	for i, c := range citations {
		out[i] = dto.CitationDTO{
			FragmentId: c.FragmentId,
			FileName:   c.FileName,
			Page:       c.Page,
		}
	}
	return out
}
