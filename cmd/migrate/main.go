package main

import (
	"log"
	"os"

	"docuchat-be/internal/model"
	"docuchat-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: extensions GORM AutoMigrate doesn't handle
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.DocumentChunk{},
		&model.Conversation{},
		&model.ConversationTurn{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: search indexes
	log.Println("Step 3: Creating Indexes...")

	postMigrationSQL := []string{
		// Full-text index powering the sparse retrieval signal
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_fulltext
		 ON document_chunks USING GIN (to_tsvector('english', text));`,

		// Scope index for per-user candidate loads
		`CREATE INDEX IF NOT EXISTS idx_document_chunks_user
		 ON document_chunks (user_id) WHERE deleted_at IS NULL;`,

		// Turn lookups are always conversation-scoped and sequence-ordered
		`CREATE INDEX IF NOT EXISTS idx_conversation_turns_conv_seq
		 ON conversation_turns (conversation_id, sequence);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v. Continuing...", err)
		}
	}

	log.Println("Migration completed successfully.")
}
