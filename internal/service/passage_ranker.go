package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/model"
	"github.com/AMV0027/gcn-final/internal/pkg/vecmath"
)

const (
	DefaultPassageThreshold = 0.5
	DefaultRecallFactor     = 0.8
	MaxPassages             = 10
)

type passageStore interface {
	ListPassageVectors(ctx context.Context, names []string) ([]model.DocumentVectors, error)
}

type PassageRanker struct {
	store        passageStore
	recallFactor float64
}

func NewPassageRanker(store passageStore, recallFactor float64) *PassageRanker {
	if recallFactor <= 0 || recallFactor > 1 {
		recallFactor = DefaultRecallFactor
	}
	return &PassageRanker{store: store, recallFactor: recallFactor}
}

// Rank scores every stored passage of docNames against queryVec and keeps the
// best MaxPassages at or above threshold scaled by the recall factor.
func (r *PassageRanker) Rank(ctx context.Context, queryVec []float32, docNames []string, threshold float64) ([]model.RankedPassage, error) {
	logger := logutil.GetLogger(ctx)
	names := dedupe(docNames)
	if len(names) == 0 {
		return []model.RankedPassage{}, nil
	}
	if _, err := vecmath.Cosine(queryVec, queryVec); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}
	docs, err := r.store.ListPassageVectors(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}
	cutoff := threshold * r.recallFactor
	results := make([]model.RankedPassage, 0)
	for _, doc := range docs {
		var elems []json.RawMessage
		if err := json.Unmarshal(doc.Vectors, &elems); err != nil {
			logger.Warn("skip document with malformed passages", zap.String("document", doc.DocumentName), zap.Error(err))
			continue
		}
		for i, raw := range elems {
			var pv model.PassageVector
			if err := json.Unmarshal(raw, &pv); err != nil {
				logger.Warn("skip malformed passage", zap.String("document", doc.DocumentName), zap.Int("index", i), zap.Error(err))
				continue
			}
			if len(pv.Vector) == 0 || pv.PageNumber < 1 {
				logger.Warn("skip incomplete passage", zap.String("document", doc.DocumentName), zap.Int("index", i))
				continue
			}
			score, err := vecmath.Cosine(queryVec, pv.Vector)
			if err != nil {
				logger.Warn("skip unscorable passage", zap.String("document", doc.DocumentName), zap.Int("index", i), zap.Error(err))
				continue
			}
			if score < cutoff {
				continue
			}
			results = append(results, model.RankedPassage{
				DocumentName: doc.DocumentName,
				Text:         pv.Text,
				PageNumber:   pv.PageNumber,
				Similarity:   score,
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > MaxPassages {
		results = results[:MaxPassages]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
