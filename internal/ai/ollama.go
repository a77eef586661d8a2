package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaURL = "http://localhost:11434"

type ollamaConfig struct {
	ServerURL string `json:"server_url"`
}

// ollamaProvider talks to a local ollama daemon. langchaingo binds the model
// at construction, so one client is kept per model name.
type ollamaProvider struct {
	serverURL string
	mu        sync.Mutex
	clients   map[string]*ollama.LLM
}

func (p *ollamaProvider) Name() string {
	return "ollama"
}

func (p *ollamaProvider) client(model string) (*ollama.LLM, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[model]; ok {
		return c, nil
	}
	c, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(p.serverURL))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	p.clients[model] = c
	return c, nil
}

func (p *ollamaProvider) Complete(ctx context.Context, model string, systemPrompt string, userPrompt string) (string, error) {
	c, err := p.client(model)
	if err != nil {
		return "", err
	}
	content := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))
	resp, err := c.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama response has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (p *ollamaProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	c, err := p.client(model)
	if err != nil {
		return nil, err
	}
	vectors, err := c.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("ollama returned no embeddings")
	}
	return vectors[0], nil
}

func newOllamaProvider(args interface{}) (*ollamaProvider, error) {
	cfg := &ollamaConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}
	return &ollamaProvider{serverURL: serverURL, clients: map[string]*ollama.LLM{}}, nil
}

func init() {
	Register("ollama", func(args interface{}) (IProvider, error) {
		return newOllamaProvider(args)
	})
	RegisterEmbed("ollama", func(args interface{}) (IEmbedProvider, error) {
		return newOllamaProvider(args)
	})
}
