package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/AMV0027/gcn-final/internal/model"
	appErr "github.com/AMV0027/gcn-final/internal/pkg/errors"
)

type fakeCorpus struct {
	mu          sync.Mutex
	names       []string
	passages    map[string][]model.PassageVector
	rawPassages map[string]string
	images      []model.ImageRecord
	files       map[string][]byte
	namesErr    error
	passagesErr error
	imagesErr   error

	passageCalls int
	lastNames    []string
}

func (f *fakeCorpus) ListDocumentNames(ctx context.Context) ([]string, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	return append([]string{}, f.names...), nil
}

func (f *fakeCorpus) ListPassageVectors(ctx context.Context, names []string) ([]model.DocumentVectors, error) {
	f.mu.Lock()
	f.passageCalls++
	f.lastNames = append([]string(nil), names...)
	f.mu.Unlock()
	if f.passagesErr != nil {
		return nil, f.passagesErr
	}
	out := make([]model.DocumentVectors, 0, len(names))
	for _, name := range names {
		if raw, ok := f.rawPassages[name]; ok {
			out = append(out, model.DocumentVectors{DocumentName: name, Vectors: json.RawMessage(raw)})
			continue
		}
		items, ok := f.passages[name]
		if !ok {
			continue
		}
		data, _ := json.Marshal(items)
		out = append(out, model.DocumentVectors{DocumentName: name, Vectors: data})
	}
	return out, nil
}

func (f *fakeCorpus) ListImageRecords(ctx context.Context) ([]model.ImageRecord, error) {
	if f.imagesErr != nil {
		return nil, f.imagesErr
	}
	return f.images, nil
}

func (f *fakeCorpus) GetDocumentFile(ctx context.Context, name string) ([]byte, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return data, nil
}

// fakeGenerator answers by prompt kind.
type fakeGenerator struct {
	mu        sync.Mutex
	selectOut string
	selectErr error
	answerOut string
	answerErr error
	phraseOut string
	phraseErr error
	calls     map[string]int
	lastUser  map[string]string
}

func (f *fakeGenerator) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	kind := "answer"
	switch {
	case systemPrompt == selectorSystemPrompt:
		kind = "select"
	case systemPrompt == searchPhraseSystemPrompt:
		kind = "phrase"
	}
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
		f.lastUser = map[string]string{}
	}
	f.calls[kind]++
	f.lastUser[kind] = userPrompt
	f.mu.Unlock()
	switch kind {
	case "select":
		return f.selectOut, f.selectErr
	case "phrase":
		return f.phraseOut, f.phraseErr
	}
	return f.answerOut, f.answerErr
}

func (f *fakeGenerator) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fail    map[string]bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[text] {
		return nil, errors.New("embedding backend down")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake:embed"
}

type fakeSearch struct {
	images    []string
	videos    []string
	links     []string
	err       error
	mu        sync.Mutex
	lastQuery string
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) record(q string) {
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
}

func (f *fakeSearch) Images(ctx context.Context, phrase string, max int) ([]string, error) {
	f.record(phrase)
	return f.images, f.err
}

func (f *fakeSearch) Videos(ctx context.Context, phrase string, max int) ([]string, error) {
	f.record(phrase)
	return f.videos, f.err
}

func (f *fakeSearch) Links(ctx context.Context, phrase string, max int) ([]string, error) {
	f.record(phrase)
	if strings.Contains(phrase, "nolinks") {
		return nil, errors.New("quota exceeded")
	}
	return f.links, f.err
}
