package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
	"github.com/AMV0027/gcn-final/internal/model"
	"github.com/AMV0027/gcn-final/internal/pkg/vecmath"
)

const (
	DefaultImageThreshold = 0.6
	MaxImages             = 5
	defaultImageWorkers   = 4
)

type imageStore interface {
	ListImageRecords(ctx context.Context) ([]model.ImageRecord, error)
}

// ImageRanker scores stored document images by caption similarity. Captions
// are embedded on a bounded worker pool.
type ImageRanker struct {
	store    imageStore
	embedder ai.IEmbedder
	pool     *ants.Pool
}

func NewImageRanker(store imageStore, embedder ai.IEmbedder, workers int) (*ImageRanker, error) {
	if workers <= 0 {
		workers = defaultImageWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create image worker pool: %w", err)
	}
	return &ImageRanker{store: store, embedder: embedder, pool: pool}, nil
}

func (r *ImageRanker) Close() {
	r.pool.Release()
}

func (r *ImageRanker) Rank(ctx context.Context, query string, threshold float64) ([]model.RankedImage, error) {
	logger := logutil.GetLogger(ctx)
	records, err := r.store.ListImageRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	if len(records) == 0 {
		return []model.RankedImage{}, nil
	}
	queryVec, err := r.embedder.Embed(ctx, query, ai.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scores := make([]float64, len(records))
	kept := make([]bool, len(records))
	var wg sync.WaitGroup
	for i := range records {
		task := func() {
			defer wg.Done()
			score, ok := r.score(ctx, queryVec, records[i])
			scores[i] = score
			kept[i] = ok
		}
		wg.Add(1)
		if err := r.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	results := make([]model.RankedImage, 0)
	for i, rec := range records {
		if !kept[i] || scores[i] < threshold {
			continue
		}
		results = append(results, model.RankedImage{
			DocumentName: rec.DocumentName,
			ImageBase64:  base64.StdEncoding.EncodeToString(rec.Image),
			Similarity:   scores[i],
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > MaxImages {
		results = results[:MaxImages]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	logger.Debug("images ranked", zap.Int("scanned", len(records)), zap.Int("kept", len(results)))
	return results, nil
}

func (r *ImageRanker) score(ctx context.Context, queryVec []float32, rec model.ImageRecord) (float64, bool) {
	logger := logutil.GetLogger(ctx)
	vec, err := r.embedder.Embed(ctx, rec.Caption, ai.TaskRetrievalDocument)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("embedder", "caption").Inc()
		logger.Warn("skip image, caption embedding failed", zap.String("document", rec.DocumentName), zap.Error(err))
		return 0, false
	}
	score, err := vecmath.Cosine(queryVec, vec)
	if err != nil {
		logger.Warn("skip image, unscorable caption", zap.String("document", rec.DocumentName), zap.Error(err))
		return 0, false
	}
	return score, true
}
