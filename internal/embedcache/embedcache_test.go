package embedcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/model"
)

type countingEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1, 2}, nil
}

func (c *countingEmbedder) ModelName() string {
	return "fake:model"
}

type memKV struct {
	data   map[string][]byte
	getErr error
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, errKeyNotFound
	}
	return v, nil
}

func (m *memKV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

type memDB struct {
	rows map[string]*model.EmbeddingCache
}

func (m *memDB) Get(ctx context.Context, modelName, taskType, contentHash string) ([]float32, bool, error) {
	row, ok := m.rows[modelName+"|"+taskType+"|"+contentHash]
	if !ok {
		return nil, false, nil
	}
	return row.Embedding, true, nil
}

func (m *memDB) Save(ctx context.Context, item *model.EmbeddingCache) error {
	m.rows[item.ModelName+"|"+item.TaskType+"|"+item.ContentHash] = item
	return nil
}

func TestLruCacheHit(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := e.Embed(context.Background(), "fire exits", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	first[0] = 99
	second, err := e.Embed(context.Background(), "fire exits", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Equal(t, []float32{10, 1, 2}, second)
	require.Equal(t, 1, inner.calls)

	_, err = e.Embed(context.Background(), "fire exits", ai.TaskRetrievalQuery)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
	require.Equal(t, "fake:model", e.ModelName())
}

func TestLruDisabled(t *testing.T) {
	inner := &countingEmbedder{}
	require.Same(t, ai.IEmbedder(inner), WrapLruCacheToEmbedder(inner, 0, time.Minute))
}

func TestRedisCacheRoundTrip(t *testing.T) {
	inner := &countingEmbedder{}
	kv := &memKV{data: map[string][]byte{}}
	e := WrapRedisCacheToEmbedder(inner, kv, time.Hour)

	want, err := e.Embed(context.Background(), "exit signs", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, kv.data, 1)
	got, err := e.Embed(context.Background(), "exit signs", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, 1, inner.calls)
}

func TestRedisErrorDegradesToMiss(t *testing.T) {
	inner := &countingEmbedder{}
	kv := &memKV{data: map[string][]byte{}, getErr: errors.New("connection refused")}
	e := WrapRedisCacheToEmbedder(inner, kv, time.Hour)

	_, err := e.Embed(context.Background(), "a", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "a", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestBytesToVectorRejectsBadLength(t *testing.T) {
	_, err := bytesToVector([]byte{1, 2, 3})
	require.Error(t, err)
	_, err = bytesToVector(nil)
	require.Error(t, err)
}

func TestDBCacheSavesAndHits(t *testing.T) {
	inner := &countingEmbedder{}
	store := &memDB{rows: map[string]*model.EmbeddingCache{}}
	e := WrapDBCacheToEmbedder(inner, store)

	_, err := e.Embed(context.Background(), "sprinklers", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, store.rows, 1)
	for _, row := range store.rows {
		require.Equal(t, "fake:model", row.ModelName)
		require.Len(t, row.ContentHash, 64)
		require.NotZero(t, row.Ctime)
	}
	_, err = e.Embed(context.Background(), "sprinklers", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
}

func TestWrapLayersTiers(t *testing.T) {
	inner := &countingEmbedder{}
	kv := &memKV{data: map[string][]byte{}}
	store := &memDB{rows: map[string]*model.EmbeddingCache{}}
	e := Wrap(inner, Options{LRUSize: 8, LRUTTL: time.Minute, Redis: kv, RedisTTL: time.Hour, DB: store})

	_, err := e.Embed(context.Background(), "egress", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, kv.data, 1)
	require.Len(t, store.rows, 1)

	// A fresh lru over the same backing stores is served from redis.
	e2 := Wrap(inner, Options{LRUSize: 8, LRUTTL: time.Minute, Redis: kv, RedisTTL: time.Hour, DB: store})
	_, err = e2.Embed(context.Background(), "egress", ai.TaskRetrievalDocument)
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
}

func TestEmbedErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	e := Wrap(&countingEmbedder{err: boom}, Options{LRUSize: 8, LRUTTL: time.Minute})
	_, err := e.Embed(context.Background(), "x", ai.TaskRetrievalDocument)
	require.ErrorIs(t, err, boom)
}
