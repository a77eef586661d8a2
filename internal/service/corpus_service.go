package service

import (
	"context"
	"strings"

	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

type corpusReader interface {
	ListDocumentNames(ctx context.Context) ([]string, error)
	GetDocumentFile(ctx context.Context, name string) ([]byte, error)
}

type CorpusService struct {
	store corpusReader
}

func NewCorpusService(store corpusReader) *CorpusService {
	return &CorpusService{store: store}
}

func (s *CorpusService) ListDocuments(ctx context.Context) ([]string, error) {
	return s.store.ListDocumentNames(ctx)
}

func (s *CorpusService) DocumentFile(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	return s.store.GetDocumentFile(ctx, name)
}
