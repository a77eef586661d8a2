package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AMV0027/gcn-final/internal/model"
)

type pipeline struct {
	corpus   *fakeCorpus
	gen      *fakeGenerator
	embedder *fakeEmbedder
	search   *fakeSearch
	svc      *QueryService
}

func newPipeline(t *testing.T, corpus *fakeCorpus, gen *fakeGenerator) *pipeline {
	t.Helper()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"fire exits":  {1, 0, 0},
		"exit sign":   {0.9, 0.1, 0},
		"boiler room": {0, 1, 0},
	}}
	provider := &fakeSearch{images: []string{"https://img"}, videos: []string{"vid"}, links: []string{"https://link"}}
	images, err := NewImageRanker(corpus, emb, 2)
	require.NoError(t, err)
	t.Cleanup(images.Close)
	svc := NewQueryService(QueryDeps{
		Selector: NewDocumentSelector(corpus, gen, 0),
		Embedder: emb,
		Passages: NewPassageRanker(corpus, 0),
		Images:   images,
		Answers:  NewAnswerSynthesizer(gen),
		Media:    NewMediaService(gen, provider, 5),
	}, QueryConfig{})
	return &pipeline{corpus: corpus, gen: gen, embedder: emb, search: provider, svc: svc}
}

func passagesFixture() []model.RankedPassage {
	return []model.RankedPassage{
		{DocumentName: "Safety-Manual", PageNumber: 3, Text: "Exits shall be illuminated.", Similarity: 0.9, Rank: 1},
		{DocumentName: "Safety-Manual", PageNumber: 2, Text: "Doors swing outward.", Similarity: 0.8, Rank: 2},
	}
}

func TestAnswerScenarioSingleDocument(t *testing.T) {
	corpus := &fakeCorpus{
		names: []string{"Safety-Manual"},
		passages: map[string][]model.PassageVector{
			"Safety-Manual": {{Vector: []float32{1, 0.05, 0}, Text: "Exits shall be illuminated.", PageNumber: 3}},
		},
		images: []model.ImageRecord{{DocumentName: "Safety-Manual", Caption: "exit sign", Image: []byte("png")}},
	}
	gen := &fakeGenerator{
		selectOut: `{"pdf_names": ["Safety-Manual"]}`,
		answerOut: "Exits must be illuminated [Page 3].",
		phraseOut: "fire exit illumination",
	}
	p := newPipeline(t, corpus, gen)

	res, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Empty(t, res.Error)
	require.Equal(t, "fire exits", res.Query)
	require.NotEmpty(t, res.Answer)
	require.Equal(t, []model.CitationGroup{{DocumentName: "Safety-Manual", PageNumbers: []int{3}}}, res.References)
	require.Len(t, res.SimilarImages, 1)
	require.Equal(t, []string{"https://img"}, res.OnlineImages)
	require.Equal(t, []string{"vid"}, res.OnlineVideos)
	require.Equal(t, []string{"https://link"}, res.OnlineLinks)
	require.Equal(t, "fire exit illumination", p.search.lastQuery)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(data), `"pdf_references":[{"pdf_name":"Safety-Manual","page_numbers":[3]}]`)
}

func TestAnswerScenarioEmptyCorpus(t *testing.T) {
	gen := &fakeGenerator{}
	p := newPipeline(t, &fakeCorpus{}, gen)

	res, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Equal(t, model.ErrMsgNoDocuments, res.Error)
	require.Zero(t, p.corpus.passageCalls)
	require.Zero(t, gen.count("select"))
	require.Zero(t, p.embedder.calls)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"error": "No relevant PDFs found"}`, string(data))
}

func TestAnswerScenarioBelowThreshold(t *testing.T) {
	corpus := &fakeCorpus{
		names: []string{"Boilers"},
		passages: map[string][]model.PassageVector{
			"Boilers": {{Vector: []float32{0, 1, 0}, Text: "Boiler rooms need ventilation.", PageNumber: 1}},
		},
	}
	gen := &fakeGenerator{selectOut: `{"pdf_names": ["Boilers"]}`}
	p := newPipeline(t, corpus, gen)

	res, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Equal(t, model.ErrMsgNoText, res.Error)
	require.Zero(t, gen.count("answer"))

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"error": "No relevant text found in the identified PDFs"}`, string(data))
}

func TestAnswerScenarioDuplicatePages(t *testing.T) {
	corpus := &fakeCorpus{
		names: []string{"Safety-Manual"},
		passages: map[string][]model.PassageVector{
			"Safety-Manual": {
				{Vector: []float32{1, 0, 0}, Text: "first", PageNumber: 2},
				{Vector: []float32{1, 0.1, 0}, Text: "second", PageNumber: 2},
			},
		},
	}
	gen := &fakeGenerator{selectOut: `{"pdf_names": ["Safety-Manual"]}`, answerOut: "ok"}
	p := newPipeline(t, corpus, gen)

	res, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Equal(t, []model.CitationGroup{{DocumentName: "Safety-Manual", PageNumbers: []int{2}}}, res.References)
}

func TestAnswerIsDeterministic(t *testing.T) {
	corpus := &fakeCorpus{
		names: []string{"A", "B"},
		passages: map[string][]model.PassageVector{
			"A": {{Vector: []float32{1, 0.2, 0}, Text: "a", PageNumber: 4}},
			"B": {{Vector: []float32{1, 0.1, 0}, Text: "b", PageNumber: 7}},
		},
	}
	gen := &fakeGenerator{selectOut: `{"pdf_names": ["B", "A"]}`, answerOut: "ok"}
	p := newPipeline(t, corpus, gen)

	first, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	second, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Equal(t, first.References, second.References)
	require.Equal(t, []model.CitationGroup{
		{DocumentName: "B", PageNumbers: []int{7}},
		{DocumentName: "A", PageNumbers: []int{4}},
	}, first.References)
}

func TestAnswerFailOpenStillAnswers(t *testing.T) {
	corpus := &fakeCorpus{
		names: []string{"Safety-Manual"},
		passages: map[string][]model.PassageVector{
			"Safety-Manual": {{Vector: []float32{1, 0, 0}, Text: "t", PageNumber: 1}},
		},
	}
	gen := &fakeGenerator{selectErr: errors.New("generator down"), answerErr: errors.New("generator down"), phraseErr: errors.New("generator down")}
	p := newPipeline(t, corpus, gen)

	res, err := p.svc.Answer(context.Background(), "fire exits")
	require.NoError(t, err)
	require.Equal(t, "Error generating answer: generator down", res.Answer)
	require.Len(t, res.References, 1)
	require.Equal(t, "fire exits", p.search.lastQuery)
}

func TestAnswerProcessingFailures(t *testing.T) {
	tests := []struct {
		name   string
		corpus *fakeCorpus
	}{
		{name: "store names", corpus: &fakeCorpus{namesErr: errors.New("conn reset")}},
		{name: "store passages", corpus: &fakeCorpus{names: []string{"A"}, passagesErr: errors.New("conn reset")}},
		{name: "store images", corpus: &fakeCorpus{
			names:     []string{"A"},
			passages:  map[string][]model.PassageVector{"A": {{Vector: []float32{1, 0, 0}, Text: "t", PageNumber: 1}}},
			imagesErr: errors.New("conn reset"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, tt.corpus, &fakeGenerator{selectOut: `{"pdf_names": ["A"]}`, answerOut: "ok"})
			res, err := p.svc.Answer(context.Background(), "fire exits")
			require.Nil(t, res)
			var perr *ProcessingError
			require.ErrorAs(t, err, &perr)
			require.Contains(t, err.Error(), "processing failed: ")
			require.Contains(t, err.Error(), "conn reset")
		})
	}
}

type panicGenerator struct{}

func (panicGenerator) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if systemPrompt == selectorSystemPrompt {
		return `{"pdf_names": ["A"]}`, nil
	}
	panic("nil map write")
}

func TestAnswerRecoversPanics(t *testing.T) {
	corpus := &fakeCorpus{
		names:    []string{"A"},
		passages: map[string][]model.PassageVector{"A": {{Vector: []float32{1, 0, 0}, Text: "t", PageNumber: 1}}},
	}
	emb := &fakeEmbedder{vectors: map[string][]float32{"fire exits": {1, 0, 0}}}
	images, err := NewImageRanker(corpus, emb, 1)
	require.NoError(t, err)
	defer images.Close()
	svc := NewQueryService(QueryDeps{
		Selector: NewDocumentSelector(corpus, panicGenerator{}, 0),
		Embedder: emb,
		Passages: NewPassageRanker(corpus, 0),
		Images:   images,
		Answers:  NewAnswerSynthesizer(panicGenerator{}),
	}, QueryConfig{})

	_, err = svc.Answer(context.Background(), "fire exits")
	var perr *ProcessingError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, err.Error(), "nil map write")
}
