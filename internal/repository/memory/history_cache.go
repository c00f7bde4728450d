package memory

import (
	"time"

	"docuchat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type HistoryCache struct {
	cache *cache.Cache
}

func NewHistoryCache() *HistoryCache {
	// Turns expire after 5 minutes; expired entries are purged every 10 minutes
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &HistoryCache{
		cache: c,
	}
}

func (r *HistoryCache) Save(conversationId uuid.UUID, turns []*entity.ConversationTurn) {
	r.cache.Set(conversationId.String(), turns, cache.DefaultExpiration)
}

func (r *HistoryCache) Get(conversationId uuid.UUID) ([]*entity.ConversationTurn, bool) {
	if x, found := r.cache.Get(conversationId.String()); found {
		return x.([]*entity.ConversationTurn), true
	}
	return nil, false
}

func (r *HistoryCache) Invalidate(conversationId uuid.UUID) {
	r.cache.Delete(conversationId.String())
}
