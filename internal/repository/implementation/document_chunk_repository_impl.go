package implementation

import (
	"context"

	"docuchat-be/internal/entity"
	"docuchat-be/internal/mapper"
	"docuchat-be/internal/model"
	"docuchat-be/internal/repository/contract"
	"docuchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DocumentChunk{}, id).Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByFileName(ctx context.Context, userId uuid.UUID, fileName string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND file_name = ?", userId, fileName).
		Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocumentChunk{}).Count(&count).Error
	return count, err
}

func (r *DocumentChunkRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("file_name ASC, page ASC NULLS LAST, created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

// SearchLexical ranks the user's chunks against the query with Postgres
// full-text search. websearch_to_tsquery tolerates free-form question text.
func (r *DocumentChunkRepositoryImpl) SearchLexical(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*contract.LexicalHit, error) {
	if limit <= 0 {
		limit = 100
	}

	type row struct {
		Id    uuid.UUID
		Score float64
	}
	var rows []row

	err := r.db.WithContext(ctx).Raw(`
		SELECT id, ts_rank(to_tsvector('english', text), q) AS score
		FROM document_chunks, websearch_to_tsquery('english', ?) q
		WHERE user_id = ?
		  AND deleted_at IS NULL
		  AND to_tsvector('english', text) @@ q
		ORDER BY score DESC
		LIMIT ?`,
		query, userId, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]*contract.LexicalHit, len(rows))
	for i, rw := range rows {
		hits[i] = &contract.LexicalHit{ChunkId: rw.Id, Score: rw.Score}
	}
	return hits, nil
}

func (r *DocumentChunkRepositoryImpl) DistinctDocuments(ctx context.Context, userId uuid.UUID) ([]*contract.DocumentInfo, error) {
	var infos []*contract.DocumentInfo
	err := r.db.WithContext(ctx).
		Model(&model.DocumentChunk{}).
		Select("file_name, COUNT(DISTINCT page) AS pages, COUNT(*) AS chunks").
		Where("user_id = ?", userId).
		Group("file_name").
		Order("file_name ASC").
		Scan(&infos).Error
	if err != nil {
		return nil, err
	}
	return infos, nil
}
