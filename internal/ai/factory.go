package ai

import (
	"encoding/json"
	"fmt"

	"github.com/AMV0027/gcn-final/internal/config"
)

// BuildGenerator creates every configured generator and chains them in
// config order; later entries are used only when earlier ones fail.
func BuildGenerator(items []config.ProviderConfig) (IGenerator, error) {
	entries := make([]GeneratorEntry, 0, len(items))
	for i, item := range items {
		p, err := NewProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("ai.generator[%d]: %w", i, err)
		}
		entries = append(entries, GeneratorEntry{
			Name:      p.Name() + ":" + item.Model,
			Generator: NewGenerator(p, item.Model),
		})
	}
	g := NewGroupGenerator(entries)
	if g == nil {
		return nil, fmt.Errorf("ai.generator is empty")
	}
	return g, nil
}

func BuildEmbedder(items []config.ProviderConfig) (IEmbedder, error) {
	entries := make([]EmbedderEntry, 0, len(items))
	for i, item := range items {
		p, err := NewEmbedProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("ai.embedder[%d]: %w", i, err)
		}
		e := NewEmbedder(p, item.Model)
		entries = append(entries, EmbedderEntry{Name: e.ModelName(), Embedder: e})
	}
	e := NewGroupEmbedder(entries)
	if e == nil {
		return nil, fmt.Errorf("ai.embedder is empty")
	}
	return e, nil
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
