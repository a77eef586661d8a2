package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/model"
	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

type chatStore interface {
	Create(ctx context.Context, rec *model.ChatRecord) error
	ListChats(ctx context.Context) ([]model.ChatRecord, error)
	ListByChat(ctx context.Context, chatID string) ([]model.ChatRecord, error)
	DeleteChat(ctx context.Context, chatID string) error
}

type answerer interface {
	Answer(ctx context.Context, query string) (*model.QueryResult, error)
}

type ChatService struct {
	queries answerer
	store   chatStore
}

func NewChatService(queries answerer, store chatStore) *ChatService {
	return &ChatService{queries: queries, store: store}
}

// Ask answers query and, when chatID is set and an answer was produced,
// appends the exchange to that chat.
func (s *ChatService) Ask(ctx context.Context, chatID string, query string) (*model.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	res, err := s.queries.Answer(ctx, query)
	if err != nil {
		return nil, err
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" || res.Error != "" || s.store == nil {
		return res, nil
	}
	rec := &model.ChatRecord{
		ChatID:        chatID,
		Query:         res.Query,
		Answer:        res.Answer,
		References:    res.References,
		SimilarImages: res.SimilarImages,
		OnlineImages:  res.OnlineImages,
		OnlineVideos:  res.OnlineVideos,
		OnlineLinks:   res.OnlineLinks,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		logutil.GetLogger(ctx).Warn("save chat history failed", zap.String("chat_id", chatID), zap.Error(err))
	}
	return res, nil
}

func (s *ChatService) ListChats(ctx context.Context) ([]model.ChatRecord, error) {
	return s.store.ListChats(ctx)
}

func (s *ChatService) History(ctx context.Context, chatID string) ([]model.ChatRecord, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, appErr.ErrInvalid
	}
	return s.store.ListByChat(ctx, chatID)
}

func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return appErr.ErrInvalid
	}
	return s.store.DeleteChat(ctx, chatID)
}
