package embedcache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/rueidis"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/metrics"
)

var errKeyNotFound = errors.New("key not found")

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// RedisStore is a minimal byte store over rueidis, shared by several
// instances of the service.
type RedisStore struct {
	client rueidis.Client
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, errKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value))
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() {
	s.client.Close()
}

// WrapRedisCacheToEmbedder stores embeddings as little-endian float32 bytes.
// Redis errors degrade to a miss.
func WrapRedisCacheToEmbedder(e ai.IEmbedder, store kvStore, ttl time.Duration) ai.IEmbedder {
	if e == nil || store == nil {
		return e
	}
	return &redisEmbedder{next: e, store: store, ttl: ttl}
}

type redisEmbedder struct {
	next  ai.IEmbedder
	store kvStore
	ttl   time.Duration
}

func (r *redisEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := buildCacheKey(r.next.ModelName(), taskType, text)
	if vec, ok := r.get(ctx, key.full); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("redis", "hit").Inc()
		return vec, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("redis", "miss").Inc()
	res, err := r.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetWithTTL(ctx, key.full, vectorToBytes(res), r.ttl); err != nil {
		logutil.GetLogger(ctx).Warn("failed to cache embedding in redis", zap.Error(err))
	}
	return res, nil
}

func (r *redisEmbedder) get(ctx context.Context, key string) ([]float32, bool) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, errKeyNotFound) {
			logutil.GetLogger(ctx).Warn("read embedding from redis failed", zap.Error(err))
		}
		return nil, false
	}
	vec, err := bytesToVector(data)
	if err != nil {
		logutil.GetLogger(ctx).Warn("decode cached embedding failed", zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (r *redisEmbedder) ModelName() string {
	return r.next.ModelName()
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
