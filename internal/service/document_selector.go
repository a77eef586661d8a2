package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
	"github.com/AMV0027/gcn-final/internal/pkg/fuzzy"
)

type SelectionPolicy int

const (
	PolicyEmptyCorpus SelectionPolicy = iota
	PolicyMatched
	// PolicyFailOpen means the generator failed and every corpus document
	// was selected.
	PolicyFailOpen
)

func (p SelectionPolicy) String() string {
	switch p {
	case PolicyEmptyCorpus:
		return "empty_corpus"
	case PolicyMatched:
		return "matched"
	case PolicyFailOpen:
		return "fail_open"
	}
	return "unknown"
}

type Selection struct {
	Names  []string
	Policy SelectionPolicy
}

type documentLister interface {
	ListDocumentNames(ctx context.Context) ([]string, error)
}

// DocumentSelector asks the generator which documents can answer a query and
// snaps its answer onto real corpus names.
type DocumentSelector struct {
	store     documentLister
	generator ai.IGenerator
	cutoff    float64
}

func NewDocumentSelector(store documentLister, generator ai.IGenerator, cutoff float64) *DocumentSelector {
	if cutoff <= 0 {
		cutoff = fuzzy.DefaultCutoff
	}
	return &DocumentSelector{store: store, generator: generator, cutoff: cutoff}
}

func (s *DocumentSelector) Select(ctx context.Context, query string) (Selection, error) {
	logger := logutil.GetLogger(ctx)
	names, err := s.store.ListDocumentNames(ctx)
	if err != nil {
		return Selection{}, fmt.Errorf("list documents: %w", err)
	}
	if len(names) == 0 {
		return Selection{Names: []string{}, Policy: PolicyEmptyCorpus}, nil
	}
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return Selection{}, fmt.Errorf("encode document names: %w", err)
	}
	userPrompt := fmt.Sprintf("PDF Names: %s\nQuery: %s", namesJSON, query)
	resp, err := s.generator.Complete(ctx, selectorSystemPrompt, userPrompt)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("generator", "select").Inc()
		logger.Warn("document selection failed, using whole corpus", zap.Int("documents", len(names)), zap.Error(err))
		return Selection{Names: append([]string(nil), names...), Policy: PolicyFailOpen}, nil
	}
	var out struct {
		PDFNames []string `json:"pdf_names"`
	}
	if err := ai.DecodeJSONObject(resp, &out); err != nil {
		logger.Warn("unparseable document selection", zap.String("response", resp), zap.Error(err))
		out.PDFNames = nil
	}
	matched := fuzzy.BestMatches(out.PDFNames, names, s.cutoff)
	logger.Debug("documents selected", zap.Strings("proposed", out.PDFNames), zap.Strings("matched", matched))
	return Selection{Names: matched, Policy: PolicyMatched}, nil
}
