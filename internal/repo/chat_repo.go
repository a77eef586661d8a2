package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/AMV0027/gcn-final/internal/model"
	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

type ChatRepo struct {
	db *sqlx.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: sqlx.NewDb(db, "postgres")}
}

type chatRow struct {
	ID            int64          `db:"id"`
	ChatID        string         `db:"chat_id"`
	Query         string         `db:"query"`
	Answer        string         `db:"answer"`
	References    types.JSONText `db:"pdf_references"`
	SimilarImages types.JSONText `db:"similar_images"`
	OnlineImages  types.JSONText `db:"online_images"`
	OnlineVideos  types.JSONText `db:"online_videos"`
	OnlineLinks   types.JSONText `db:"online_links"`
	CreatedAt     time.Time      `db:"created_at"`
}

const chatColumns = `id, chat_id, query, answer,
	COALESCE(pdf_references, '[]') AS pdf_references,
	COALESCE(similar_images, '[]') AS similar_images,
	COALESCE(online_images, '[]') AS online_images,
	COALESCE(online_videos, '[]') AS online_videos,
	COALESCE(online_links, '[]') AS online_links,
	created_at`

func (r *ChatRepo) Create(ctx context.Context, rec *model.ChatRecord) error {
	row, err := toChatRow(rec)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO chat_history
			(chat_id, query, answer, pdf_references, similar_images, online_images, online_videos, online_links)
		VALUES
			(:chat_id, :query, :answer, :pdf_references, :similar_images, :online_images, :online_videos, :online_links)
	`
	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

// ListChats returns the first record of every chat.
func (r *ChatRepo) ListChats(ctx context.Context) ([]model.ChatRecord, error) {
	query := `SELECT DISTINCT ON (chat_id) ` + chatColumns + ` FROM chat_history ORDER BY chat_id, created_at ASC`
	var rows []chatRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return fromChatRows(rows)
}

func (r *ChatRepo) ListByChat(ctx context.Context, chatID string) ([]model.ChatRecord, error) {
	query := `SELECT ` + chatColumns + ` FROM chat_history WHERE chat_id = $1 ORDER BY created_at ASC, id ASC`
	var rows []chatRow
	if err := r.db.SelectContext(ctx, &rows, query, chatID); err != nil {
		return nil, err
	}
	return fromChatRows(rows)
}

func (r *ChatRepo) DeleteChat(ctx context.Context, chatID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_history WHERE chat_id = $1`, chatID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func toChatRow(rec *model.ChatRecord) (*chatRow, error) {
	row := &chatRow{
		ChatID: rec.ChatID,
		Query:  rec.Query,
		Answer: rec.Answer,
	}
	fields := []struct {
		dst *types.JSONText
		src interface{}
	}{
		{&row.References, orEmpty(rec.References)},
		{&row.SimilarImages, orEmpty(rec.SimilarImages)},
		{&row.OnlineImages, orEmpty(rec.OnlineImages)},
		{&row.OnlineVideos, orEmpty(rec.OnlineVideos)},
		{&row.OnlineLinks, orEmpty(rec.OnlineLinks)},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = types.JSONText(data)
	}
	return row, nil
}

func fromChatRows(rows []chatRow) ([]model.ChatRecord, error) {
	out := make([]model.ChatRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.ChatRecord{
			ID:        row.ID,
			ChatID:    row.ChatID,
			Query:     row.Query,
			Answer:    row.Answer,
			CreatedAt: row.CreatedAt,
		}
		if err := unmarshalJSONB(row.References, &rec.References); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(row.SimilarImages, &rec.SimilarImages); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(row.OnlineImages, &rec.OnlineImages); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(row.OnlineVideos, &rec.OnlineVideos); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(row.OnlineLinks, &rec.OnlineLinks); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func unmarshalJSONB(src types.JSONText, dst interface{}) error {
	if len(src) == 0 {
		return nil
	}
	return src.Unmarshal(dst)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
