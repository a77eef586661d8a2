package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeminiWithoutKeyIsUnavailable(t *testing.T) {
	p, err := NewProvider("gemini", map[string]interface{}{"api_key": "  "})
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), "gemini-2.0-flash", "sys", "user")
	require.ErrorIs(t, err, ErrUnavailable)

	e, err := NewEmbedProvider("gemini", map[string]interface{}{})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "text-embedding-004", "text", TaskRetrievalQuery)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGeminiClientBuiltAtConstruction(t *testing.T) {
	p, err := newGeminiProvider(map[string]interface{}{"api_key": "test-key"})
	require.NoError(t, err)
	require.NotNil(t, p.client)

	// A canceled request context must not affect the shared client.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Complete(ctx, "gemini-2.0-flash", "sys", "user")
	require.Error(t, err)

	client, err := p.getClient()
	require.NoError(t, err)
	require.Same(t, p.client, client)
}
