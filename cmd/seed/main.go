package main

import (
	"context"
	"log"
	"time"

	"docuchat-be/internal/config"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/implementation"
	"docuchat-be/pkg/database"
	"docuchat-be/pkg/embedding"
	"docuchat-be/pkg/embedding/jina"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// demoUserId matches the user_id claim of the local-dev JWT.
const demoUserId = "11111111-1111-1111-1111-111111111111"

type seedChunk struct {
	FileName string
	Page     int
	Text     string
}

var chunks = []seedChunk{
	{"handbook.pdf", 1, "Welcome to the engineering handbook. This document describes how the platform is built, deployed and operated."},
	{"handbook.pdf", 2, "Deployments run through the CI pipeline. Every merge to main triggers a build, the test suite and a staged rollout."},
	{"handbook.pdf", 3, "On-call rotations last one week. The primary responder acknowledges pages within five minutes during business hours."},
	{"architecture.pdf", 1, "The system is a set of stateless services behind a load balancer, with Postgres as the primary store and Redis for fanout."},
	{"architecture.pdf", 2, "Search combines embedding similarity with Postgres full-text ranking. Results are fused and diversified before prompting."},
	{"faq.pdf", 1, "Q: How do I reset my password? A: Use the self-service portal. Accounts lock after ten failed attempts."},
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var provider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		provider = embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
	}

	userId := uuid.MustParse(demoUserId)
	repo := implementation.NewDocumentChunkRepository(db)

	color.Cyan("Seeding %d chunks for demo user %s", len(chunks), demoUserId)

	entities := make([]*entity.DocumentChunk, 0, len(chunks))
	for _, c := range chunks {
		res, err := provider.Generate(c.Text, "RETRIEVAL_DOCUMENT")
		if err != nil {
			color.Red("  embed failed for %s p%d: %v", c.FileName, c.Page, err)
			log.Fatal("Seeding aborted: embedding provider unavailable")
		}

		page := c.Page
		entities = append(entities, &entity.DocumentChunk{
			Id:        uuid.New(),
			UserId:    userId,
			FileName:  c.FileName,
			Page:      &page,
			Text:      c.Text,
			Embedding: res.Embedding.Values,
			CreatedAt: time.Now(),
		})
		color.Green("  embedded %s p%d (%d dims)", c.FileName, c.Page, len(res.Embedding.Values))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.CreateBulk(ctx, entities); err != nil {
		color.Red("Insert failed: %v", err)
		log.Fatal("Seeding aborted")
	}

	color.Cyan("Done. %d chunks indexed.", len(entities))
}
