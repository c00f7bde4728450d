package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/memory"
	"docuchat-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type chatFixture struct {
	store *memStore
	llm   *stubLLM
	svc   IChatService
}

func newChatFixture() *chatFixture {
	store := newMemStore()
	stub := &stubLLM{
		chatAnswer:   "The rollout steps are on page 1 [file:guide.pdf page:1].",
		generateText: "which page of the deployment guide lists the rollout steps",
	}
	svc := NewChatService(
		&memFactory{store: store},
		&stubEmbedding{vector: []float32{1, 0}},
		stub,
		memory.NewHistoryCache(),
		nil,
		gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		retrieval.DefaultParams(),
		nopLogger{},
	)
	return &chatFixture{store: store, llm: stub, svc: svc}
}

const narrowQuestion = "where does the deployment guide describe the production rollout steps"

func TestSendChatFirstExchange(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})
	f.store.seedChunk(userId, "guide.pdf", 2, []float32{0, 1})

	res, err := f.svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Question: narrowQuestion})

	assert.NoError(t, err)
	assert.Equal(t, f.llm.chatAnswer, res.Answer)
	assert.NotEqual(t, uuid.Nil, res.ConversationId)
	assert.NotEmpty(t, res.Citations)
	assert.Equal(t, "guide.pdf", res.Citations[0].FileName)
	assert.Contains(t, res.ContextHeader, "guide.pdf")

	// With no prior history the condenser never calls the provider
	assert.Equal(t, 1, f.llm.chatCalls)
	assert.Equal(t, 0, f.llm.generateCalls)

	// Conversation created with the placeholder title
	conversation, ok := f.store.conversations[res.ConversationId]
	assert.True(t, ok)
	assert.Equal(t, constant.DefaultConversationTitle, conversation.Title)

	// Both turns persisted, ordered user then assistant
	assert.Len(t, f.store.turns, 2)
	assert.Equal(t, constant.TurnRoleUser, f.store.turns[0].Role)
	assert.Equal(t, 1, f.store.turns[0].Sequence)
	assert.Equal(t, narrowQuestion, f.store.turns[0].Content)
	assert.Equal(t, constant.TurnRoleAssistant, f.store.turns[1].Role)
	assert.Equal(t, 2, f.store.turns[1].Sequence)
	assert.NotEmpty(t, f.store.turns[1].Citations)
}

func TestSendChatFollowUpUsesHistory(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})
	conversation := f.store.seedConversation(userId)
	f.store.turns = append(f.store.turns,
		&entity.ConversationTurn{
			Id: uuid.New(), ConversationId: conversation.Id,
			Role: constant.TurnRoleUser, Content: "Where are the rollout steps?", Sequence: 1,
		},
		&entity.ConversationTurn{
			Id: uuid.New(), ConversationId: conversation.Id,
			Role: constant.TurnRoleAssistant, Content: "Page 1 of guide.pdf.", Sequence: 2,
		},
	)

	res, err := f.svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question:       "and what about rollback?",
		ConversationId: &conversation.Id,
	})

	assert.NoError(t, err)
	assert.Equal(t, conversation.Id, res.ConversationId)

	// History triggers condensation before retrieval
	assert.Equal(t, 1, f.llm.generateCalls)

	// Prompt carries system, both history turns, and the evidence question
	assert.Len(t, f.llm.lastMessages, 4)
	assert.Equal(t, constant.TurnRoleSystem, f.llm.lastMessages[0].Role)
	assert.Equal(t, "Where are the rollout steps?", f.llm.lastMessages[1].Content)
	assert.Contains(t, f.llm.lastMessages[3].Content, "and what about rollback?")

	// New turns continue the sequence
	assert.Len(t, f.store.turns, 4)
	assert.Equal(t, 3, f.store.turns[2].Sequence)
	assert.Equal(t, 4, f.store.turns[3].Sequence)
}

func TestSendChatListDocumentsFastPath(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})
	f.store.seedChunk(userId, "notes.pdf", 1, []float32{0, 1})

	res, err := f.svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question: "What documents did I upload?",
	})

	assert.NoError(t, err)
	assert.Equal(t, "You uploaded: guide.pdf, notes.pdf", res.Answer)
	assert.Empty(t, res.Citations)

	// Metadata questions never reach the model
	assert.Equal(t, 0, f.llm.chatCalls)
	assert.Equal(t, 0, f.llm.generateCalls)

	// The exchange is still recorded
	assert.Len(t, f.store.turns, 2)
}

func TestSendChatListDocumentsEmptyIndex(t *testing.T) {
	f := newChatFixture()

	res, err := f.svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{
		Question: "list the documents I uploaded",
	})

	assert.NoError(t, err)
	assert.Equal(t, "You haven't uploaded any documents yet.", res.Answer)
}

func TestSendChatNoDocuments(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.SendChat(context.Background(), uuid.New(), &dto.SendChatRequest{Question: narrowQuestion})

	assert.ErrorIs(t, err, retrieval.ErrNoCandidates)
	assert.Empty(t, f.store.turns)
}

func TestSendChatGenerationFailureLeavesNothingPersisted(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})
	f.llm.chatErr = errors.New("model offline")

	_, err := f.svc.SendChat(context.Background(), userId, &dto.SendChatRequest{Question: narrowQuestion})

	var collab *retrieval.CollaboratorError
	assert.ErrorAs(t, err, &collab)
	assert.Equal(t, "answer generation", collab.Op)
	assert.Empty(t, f.store.turns)
}

func TestSendChatUnknownConversation(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})
	otherConversation := f.store.seedConversation(uuid.New())

	_, err := f.svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		Question:       narrowQuestion,
		ConversationId: &otherConversation.Id,
	})

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSendChatStreamEmitsDeltas(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	f.store.seedChunk(userId, "guide.pdf", 1, []float32{1, 0})

	var deltas []string
	res, err := f.svc.SendChatStream(context.Background(), userId, &dto.SendChatRequest{Question: narrowQuestion},
		func(delta string) error {
			deltas = append(deltas, delta)
			return nil
		})

	assert.NoError(t, err)
	assert.Equal(t, 1, f.llm.streamCalls)
	assert.Equal(t, 0, f.llm.chatCalls)
	assert.Equal(t, res.Answer, strings.Join(deltas, ""))
	assert.Len(t, f.store.turns, 2)
}

func TestGetConversationWithTurns(t *testing.T) {
	f := newChatFixture()
	userId := uuid.New()
	conversation := f.store.seedConversation(userId)
	page := 1
	f.store.turns = append(f.store.turns,
		&entity.ConversationTurn{
			Id: uuid.New(), ConversationId: conversation.Id,
			Role: constant.TurnRoleAssistant, Content: "Page 1.", Sequence: 2,
			Citations: []entity.TurnCitation{{FragmentId: "frag", FileName: "guide.pdf", Page: &page}},
		},
		&entity.ConversationTurn{
			Id: uuid.New(), ConversationId: conversation.Id,
			Role: constant.TurnRoleUser, Content: "Where?", Sequence: 1,
		},
	)

	res, err := f.svc.GetConversation(context.Background(), userId, conversation.Id)

	assert.NoError(t, err)
	assert.Len(t, res.Turns, 2)
	assert.Equal(t, 1, res.Turns[0].Sequence)
	assert.Equal(t, 2, res.Turns[1].Sequence)
	assert.Equal(t, "guide.pdf", res.Turns[1].Citations[0].FileName)
}

func TestDeleteConversationChecksOwnership(t *testing.T) {
	f := newChatFixture()
	owner := uuid.New()
	conversation := f.store.seedConversation(owner)

	err := f.svc.DeleteConversation(context.Background(), uuid.New(), conversation.Id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = f.svc.DeleteConversation(context.Background(), owner, conversation.Id)
	assert.NoError(t, err)
	assert.NotContains(t, f.store.conversations, conversation.Id)
}

func TestResolveParams(t *testing.T) {
	defaults := retrieval.DefaultParams()
	cs := &chatService{defaults: defaults}

	t.Run("defaults when unset", func(t *testing.T) {
		params := cs.resolveParams(&dto.SendChatRequest{Question: "q"})
		assert.Equal(t, defaults, params)
	})

	t.Run("request overrides", func(t *testing.T) {
		alpha := 0.5
		useMMR := false
		params := cs.resolveParams(&dto.SendChatRequest{
			Question: "q",
			TopK:     12,
			Alpha:    &alpha,
			UseMMR:   &useMMR,
		})
		assert.Equal(t, 12, params.TopK)
		assert.Equal(t, 0.5, params.Alpha)
		assert.False(t, params.UseMMR)
	})
}

func TestIsListDocumentsQuestion(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"What documents did I upload?", true},
		{"list my uploaded documents", true},
		{"list my documents", true},
		{"please list every document", true},
		{"WHAT DOCUMENTS HAVE I UPLOADED", true},
		{"what documents exist", false},
		{"summarize the uploaded documents", false},
		{"what did I upload", false},
		{"list my files", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isListDocumentsQuestion(tt.question), tt.question)
	}
}
