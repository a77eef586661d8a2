package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
	"github.com/AMV0027/gcn-final/internal/model"
)

// ProcessingError is an unexpected failure inside the pipeline, as opposed to
// the two empty-retrieval results.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return "processing failed: " + e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

type QueryConfig struct {
	PassageThreshold float64
	ImageThreshold   float64
}

type QueryService struct {
	selector *DocumentSelector
	embedder ai.IEmbedder
	passages *PassageRanker
	images   *ImageRanker
	answers  *AnswerSynthesizer
	media    *MediaService
	cfg      QueryConfig
}

type QueryDeps struct {
	Selector *DocumentSelector
	Embedder ai.IEmbedder
	Passages *PassageRanker
	Images   *ImageRanker
	Answers  *AnswerSynthesizer
	Media    *MediaService
}

func NewQueryService(deps QueryDeps, cfg QueryConfig) *QueryService {
	if cfg.PassageThreshold <= 0 {
		cfg.PassageThreshold = DefaultPassageThreshold
	}
	if cfg.ImageThreshold <= 0 {
		cfg.ImageThreshold = DefaultImageThreshold
	}
	return &QueryService{
		selector: deps.Selector,
		embedder: deps.Embedder,
		passages: deps.Passages,
		images:   deps.Images,
		answers:  deps.Answers,
		media:    deps.Media,
		cfg:      cfg,
	}
}

// Answer runs the retrieval pipeline. Empty retrieval is reported in
// QueryResult.Error; anything else that goes wrong is a *ProcessingError.
func (s *QueryService) Answer(ctx context.Context, query string) (res *model.QueryResult, err error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("query pipeline panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			res, err = nil, &ProcessingError{Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			metrics.QueryOutcomes.WithLabelValues("failed").Inc()
		}
	}()
	res, err = s.answer(ctx, query)
	if err != nil {
		logger.Error("query processing failed", zap.Error(err))
		return nil, &ProcessingError{Err: err}
	}
	return res, nil
}

func (s *QueryService) answer(ctx context.Context, query string) (*model.QueryResult, error) {
	logger := logutil.GetLogger(ctx)

	start := time.Now()
	sel, err := s.selector.Select(ctx, query)
	observeStage("select", start)
	if err != nil {
		return nil, err
	}
	if len(sel.Names) == 0 {
		metrics.QueryOutcomes.WithLabelValues("no_documents").Inc()
		logger.Info("no relevant documents", zap.String("policy", sel.Policy.String()))
		return &model.QueryResult{Error: model.ErrMsgNoDocuments}, nil
	}

	start = time.Now()
	queryVec, err := s.embedder.Embed(ctx, query, ai.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	passages, err := s.passages.Rank(ctx, queryVec, sel.Names, s.cfg.PassageThreshold)
	observeStage("rank_passages", start)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		metrics.QueryOutcomes.WithLabelValues("no_text").Inc()
		logger.Info("no relevant passages", zap.Strings("documents", sel.Names))
		return &model.QueryResult{Error: model.ErrMsgNoText}, nil
	}

	var (
		answer string
		images []model.RankedImage
		media  model.OnlineMedia
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(func() error {
		defer observeStage("answer", time.Now())
		answer = s.answers.Synthesize(gctx, query, passages)
		return nil
	}))
	g.Go(guard(func() error {
		defer observeStage("rank_images", time.Now())
		ranked, err := s.images.Rank(gctx, query, s.cfg.ImageThreshold)
		if err != nil {
			return fmt.Errorf("rank images: %w", err)
		}
		images = ranked
		return nil
	}))
	if s.media != nil {
		g.Go(guard(func() error {
			defer observeStage("media", time.Now())
			media = s.media.Lookup(gctx, s.media.SearchPhrase(gctx, query))
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.QueryOutcomes.WithLabelValues("answered").Inc()
	logger.Info("query answered",
		zap.String("policy", sel.Policy.String()),
		zap.Int("passages", len(passages)),
		zap.Int("images", len(images)),
	)
	return &model.QueryResult{
		Query:         query,
		Answer:        answer,
		References:    model.BuildCitations(passages),
		SimilarImages: images,
		OnlineImages:  media.Images,
		OnlineVideos:  media.Videos,
		OnlineLinks:   media.Links,
	}, nil
}

// guard turns a panic in a pipeline goroutine into an error.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
