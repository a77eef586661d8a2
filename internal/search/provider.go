package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Provider looks up online media for a search phrase. Each call returns at
// most max results.
type Provider interface {
	Name() string
	Images(ctx context.Context, phrase string, max int) ([]string, error)
	Videos(ctx context.Context, phrase string, max int) ([]string, error)
	Links(ctx context.Context, phrase string, max int) ([]string, error)
}

type ProviderArgs struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type ProviderFactory func(args ProviderArgs) (Provider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args ProviderArgs) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("search provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported search provider: %s", name)
	}
	if args.Client == nil {
		args.Client = http.DefaultClient
	}
	return factory(args)
}
