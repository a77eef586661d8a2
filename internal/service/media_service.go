package service

import (
	"context"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
	"github.com/AMV0027/gcn-final/internal/model"
	"github.com/AMV0027/gcn-final/internal/search"
)

const defaultMaxMedia = 5

// MediaService finds online images, videos and links for a query. Every
// lookup is best effort.
type MediaService struct {
	generator ai.IGenerator
	provider  search.Provider
	max       int
	md        goldmark.Markdown
}

func NewMediaService(generator ai.IGenerator, provider search.Provider, max int) *MediaService {
	if max <= 0 {
		max = defaultMaxMedia
	}
	return &MediaService{generator: generator, provider: provider, max: max, md: goldmark.New()}
}

// SearchPhrase asks the generator for a short web search phrase and falls
// back to query.
func (s *MediaService) SearchPhrase(ctx context.Context, query string) string {
	resp, err := s.generator.Complete(ctx, searchPhraseSystemPrompt, "Find media related to: "+query)
	if err != nil {
		metrics.CollaboratorFailures.WithLabelValues("generator", "search_phrase").Inc()
		logutil.GetLogger(ctx).Warn("search phrase generation failed", zap.Error(err))
		return query
	}
	phrase := s.plainText(resp)
	if phrase == "" {
		return query
	}
	return phrase
}

func (s *MediaService) Lookup(ctx context.Context, phrase string) model.OnlineMedia {
	out := model.OnlineMedia{Images: []string{}, Videos: []string{}, Links: []string{}}
	if s.provider == nil {
		return out
	}
	var wg sync.WaitGroup
	run := func(kind string, fn func(context.Context, string, int) ([]string, error), dst *[]string) {
		defer wg.Done()
		res, err := fn(ctx, phrase, s.max)
		if err != nil {
			metrics.CollaboratorFailures.WithLabelValues("search", kind).Inc()
			logutil.GetLogger(ctx).Warn("online search failed", zap.String("kind", kind), zap.Error(err))
			return
		}
		if len(res) > s.max {
			res = res[:s.max]
		}
		if res != nil {
			*dst = res
		}
	}
	wg.Add(3)
	go run("images", s.provider.Images, &out.Images)
	go run("videos", s.provider.Videos, &out.Videos)
	go run("links", s.provider.Links, &out.Links)
	wg.Wait()
	return out
}

// plainText drops markdown decoration the model sometimes wraps around the
// phrase (emphasis, headings, code fences, quotes). Escapes and entities in
// text are decoded.
func (s *MediaService) plainText(raw string) string {
	src := []byte(strings.TrimSpace(raw))
	doc := s.md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(decodeInline(node.Segment.Value(src)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
				b.WriteByte(' ')
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	phrase := strings.Join(strings.Fields(b.String()), " ")
	return strings.TrimSpace(strings.Trim(phrase, "\"'`"))
}

func decodeInline(raw []byte) []byte {
	out := util.UnescapePunctuations(raw)
	out = util.ResolveNumericReferences(out)
	return util.ResolveEntityNames(out)
}
