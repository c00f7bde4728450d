package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/contract"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/pkg/embedding"
	"docuchat-be/pkg/llm"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Zap() *zap.Logger                                             { return zap.NewNop() }
func (nopLogger) Sync() error                                                  { return nil }

type stubEmbedding struct {
	vector []float32
	err    error
}

func (s *stubEmbedding) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: s.vector},
	}, nil
}

type stubLLM struct {
	mu           sync.Mutex
	chatAnswer   string
	chatErr      error
	generateText string
	generateErr  error

	chatCalls     int
	generateCalls int
	streamCalls   int
	lastMessages  []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatCalls++
	s.lastMessages = history
	return s.chatAnswer, s.chatErr
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateCalls++
	return s.generateText, s.generateErr
}

func (s *stubLLM) Stream(ctx context.Context, history []llm.Message, onDelta llm.DeltaFunc, options ...llm.Option) (string, error) {
	s.mu.Lock()
	s.streamCalls++
	s.lastMessages = history
	answer, err := s.chatAnswer, s.chatErr
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	half := len(answer) / 2
	for _, part := range []string{answer[:half], answer[half:]} {
		if part == "" {
			continue
		}
		if err := onDelta(part); err != nil {
			return "", err
		}
	}
	return answer, nil
}

// memStore backs the in-memory unit of work used by the service tests.
type memStore struct {
	mu            sync.Mutex
	chunks        []*entity.DocumentChunk
	lexical       map[uuid.UUID]float64
	conversations map[uuid.UUID]*entity.Conversation
	turns         []*entity.ConversationTurn
}

func newMemStore() *memStore {
	return &memStore{
		lexical:       make(map[uuid.UUID]float64),
		conversations: make(map[uuid.UUID]*entity.Conversation),
	}
}

func (s *memStore) seedChunk(userId uuid.UUID, fileName string, page int, embedding []float32) *entity.DocumentChunk {
	chunk := &entity.DocumentChunk{
		Id:        uuid.New(),
		UserId:    userId,
		FileName:  fileName,
		Page:      &page,
		Text:      "content of " + fileName,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
	s.chunks = append(s.chunks, chunk)
	return chunk
}

func (s *memStore) seedConversation(userId uuid.UUID) *entity.Conversation {
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultConversationTitle,
		CreatedAt: time.Now(),
	}
	s.conversations[conversation.Id] = conversation
	return conversation
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{store: f.store}
}

type memUow struct {
	store *memStore
}

func (u *memUow) Begin(ctx context.Context) error { return nil }
func (u *memUow) Commit() error                   { return nil }
func (u *memUow) Rollback() error                 { return nil }

func (u *memUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &memChunkRepo{store: u.store}
}

func (u *memUow) ConversationRepository() contract.ConversationRepository {
	return &memConversationRepo{store: u.store}
}

func (u *memUow) ConversationTurnRepository() contract.ConversationTurnRepository {
	return &memTurnRepo{store: u.store}
}

type memChunkRepo struct {
	store *memStore
}

func (r *memChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.chunks = append(r.store.chunks, chunk)
	return nil
}

func (r *memChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.chunks = append(r.store.chunks, chunks...)
	return nil
}

func (r *memChunkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chunks[:0]
	for _, c := range r.store.chunks {
		if c.Id != id {
			kept = append(kept, c)
		}
	}
	r.store.chunks = kept
	return nil
}

func (r *memChunkRepo) DeleteByFileName(ctx context.Context, userId uuid.UUID, fileName string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.chunks[:0]
	for _, c := range r.store.chunks {
		if c.UserId != userId || c.FileName != fileName {
			kept = append(kept, c)
		}
	}
	r.store.chunks = kept
	return nil
}

func (r *memChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]*entity.DocumentChunk(nil), r.store.chunks...), nil
}

func (r *memChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.chunks)), nil
}

func (r *memChunkRepo) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.DocumentChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.DocumentChunk
	for _, c := range r.store.chunks {
		if c.UserId == userId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChunkRepo) SearchLexical(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*contract.LexicalHit, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var hits []*contract.LexicalHit
	for _, c := range r.store.chunks {
		if c.UserId != userId {
			continue
		}
		if score, ok := r.store.lexical[c.Id]; ok {
			hits = append(hits, &contract.LexicalHit{ChunkId: c.Id, Score: score})
		}
	}
	return hits, nil
}

func (r *memChunkRepo) DistinctDocuments(ctx context.Context, userId uuid.UUID) ([]*contract.DocumentInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pages := make(map[string]map[int]bool)
	chunks := make(map[string]int64)
	for _, c := range r.store.chunks {
		if c.UserId != userId {
			continue
		}
		chunks[c.FileName]++
		if c.Page != nil {
			if pages[c.FileName] == nil {
				pages[c.FileName] = make(map[int]bool)
			}
			pages[c.FileName][*c.Page] = true
		}
	}

	names := make([]string, 0, len(chunks))
	for name := range chunks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*contract.DocumentInfo, 0, len(names))
	for _, name := range names {
		out = append(out, &contract.DocumentInfo{
			FileName: name,
			Pages:    int64(len(pages[name])),
			Chunks:   chunks[name],
		})
	}
	return out, nil
}

type memConversationRepo struct {
	store *memStore
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.conversations[conversation.Id] = conversation
	return nil
}

func (r *memConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.conversations[conversation.Id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.conversations[conversation.Id] = conversation
	return nil
}

func (r *memConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.conversations, id)
	return nil
}

func (r *memConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if matchesConversation(c, specs) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range r.store.conversations {
		if matchesConversation(c, specs) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchesConversation(c *entity.Conversation, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.UserOwnedBy:
			if c.UserId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type memTurnRepo struct {
	store *memStore
}

func (r *memTurnRepo) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.turns = append(r.store.turns, turn)
	return nil
}

func (r *memTurnRepo) CreateBulk(ctx context.Context, turns []*entity.ConversationTurn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.turns = append(r.store.turns, turns...)
	return nil
}

func (r *memTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var conversationId *uuid.UUID
	for _, s := range specs {
		if sp, ok := s.(specification.ByConversationID); ok {
			id := sp.ConversationID
			conversationId = &id
		}
	}

	var out []*entity.ConversationTurn
	for _, t := range r.store.turns {
		if conversationId == nil || t.ConversationId == *conversationId {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (r *memTurnRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memTurnRepo) NextSequence(ctx context.Context, conversationId uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	max := 0
	for _, t := range r.store.turns {
		if t.ConversationId == conversationId && t.Sequence > max {
			max = t.Sequence
		}
	}
	return max + 1, nil
}
