package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
	"github.com/AMV0027/gcn-final/internal/model"
)

type AnswerSynthesizer struct {
	generator ai.IGenerator
}

func NewAnswerSynthesizer(generator ai.IGenerator) *AnswerSynthesizer {
	return &AnswerSynthesizer{generator: generator}
}

// Synthesize never fails: a generator error becomes the answer text.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, passages []model.RankedPassage) string {
	systemPrompt := fmt.Sprintf(answerSystemPromptTemplate, buildContext(passages))
	answer, err := s.generator.Complete(ctx, systemPrompt, query)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("generator", "answer").Inc()
		logutil.GetLogger(ctx).Warn("answer generation failed", zap.Error(err))
		return "Error generating answer: " + err.Error()
	}
	return answer
}

func buildContext(passages []model.RankedPassage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, fmt.Sprintf("Context from %s (Page %d): %s", p.DocumentName, p.PageNumber, p.Text))
	}
	return strings.Join(parts, "\n\n")
}
