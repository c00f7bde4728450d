package service

import (
	"context"

	"docuchat-be/internal/dto"
	"docuchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllDocumentsResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, fileName string) error
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory) IDocumentService {
	return &documentService{uowFactory: uowFactory}
}

func (ds *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllDocumentsResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentChunkRepository().DistinctDocuments(ctx, userId)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllDocumentsResponse, 0, len(docs))
	for _, d := range docs {
		response = append(response, &dto.GetAllDocumentsResponse{
			FileName: d.FileName,
			Pages:    d.Pages,
			Chunks:   d.Chunks,
		})
	}
	return response, nil
}

// Delete removes every indexed chunk of one document for the user.
func (ds *documentService) Delete(ctx context.Context, userId uuid.UUID, fileName string) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().DeleteByFileName(ctx, userId, fileName)
}
