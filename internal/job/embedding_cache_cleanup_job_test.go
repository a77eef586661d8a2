package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	cutoff int64
	err    error
}

func (f *fakeCleaner) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestEmbeddingCacheCleanupCutoff(t *testing.T) {
	store := &fakeCleaner{}
	j := NewEmbeddingCacheCleanupJob(store, 0)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	require.NoError(t, j.Run(context.Background()))
	require.Equal(t, now.AddDate(0, 0, -30).Unix(), store.cutoff)
	require.Equal(t, "embedding_cache_cleanup", j.Name())
}

func TestEmbeddingCacheCleanupError(t *testing.T) {
	boom := errors.New("db down")
	j := NewEmbeddingCacheCleanupJob(&fakeCleaner{err: boom}, 7)
	require.ErrorIs(t, j.Run(context.Background()), boom)
}
