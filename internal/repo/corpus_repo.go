package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/AMV0027/gcn-final/internal/model"
	"github.com/AMV0027/gcn-final/internal/pkg/dbutil"
	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

// CorpusRepo reads the ingested documents. It never writes; ingestion lives
// outside this service.
type CorpusRepo struct {
	db *sql.DB
}

func NewCorpusRepo(db *sql.DB) *CorpusRepo {
	return &CorpusRepo{db: db}
}

func (r *CorpusRepo) ListDocumentNames(ctx context.Context) ([]string, error) {
	where := map[string]interface{}{
		"_orderby": "pdf_name asc",
	}
	sqlStr, args, err := dbutil.BuildSelect("pdfdata", where, []string{"pdf_name"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *CorpusRepo) ListPassageVectors(ctx context.Context, names []string) ([]model.DocumentVectors, error) {
	if len(names) == 0 {
		return []model.DocumentVectors{}, nil
	}
	where := map[string]interface{}{
		"pdf_name in": dbutil.InValues(names),
		"_orderby":    "pdf_name asc",
	}
	sqlStr, args, err := dbutil.BuildSelect("pdfdata", where, []string{"pdf_name", "text_vectors"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]model.DocumentVectors, 0, len(names))
	for rows.Next() {
		var item model.DocumentVectors
		var blob []byte
		if err := rows.Scan(&item.DocumentName, &blob); err != nil {
			return nil, err
		}
		item.Vectors = json.RawMessage(blob)
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *CorpusRepo) ListImageRecords(ctx context.Context) ([]model.ImageRecord, error) {
	where := map[string]interface{}{
		"_orderby": "id asc",
	}
	sqlStr, args, err := dbutil.BuildSelect("pdf_images", where, []string{"pdf_name", "key_text", "image"})
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]model.ImageRecord, 0)
	for rows.Next() {
		var item model.ImageRecord
		if err := rows.Scan(&item.DocumentName, &item.Caption, &item.Image); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *CorpusRepo) GetDocumentFile(ctx context.Context, name string) ([]byte, error) {
	where := map[string]interface{}{
		"pdf_name": name,
	}
	sqlStr, args, err := dbutil.BuildSelect("pdfdata", where, []string{"pdf_file"})
	if err != nil {
		return nil, err
	}
	var file []byte
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&file); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	if len(file) == 0 {
		return nil, appErr.ErrNotFound
	}
	return file, nil
}
