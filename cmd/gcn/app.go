package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/AMV0027/gcn-final/internal/ai"
	"github.com/AMV0027/gcn-final/internal/config"
	"github.com/AMV0027/gcn-final/internal/db"
	"github.com/AMV0027/gcn-final/internal/embedcache"
	"github.com/AMV0027/gcn-final/internal/job"
	"github.com/AMV0027/gcn-final/internal/repo"
	"github.com/AMV0027/gcn-final/internal/schedule"
	"github.com/AMV0027/gcn-final/internal/search"
	"github.com/AMV0027/gcn-final/internal/service"
)

type app struct {
	cfg       *config.Config
	db        *sql.DB
	corpus    *repo.CorpusRepo
	chats     *service.ChatService
	documents *service.CorpusService
	scheduler *schedule.CronScheduler
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

func buildApp(cfg *config.Config) (*app, error) {
	logger := logutil.GetLogger(context.Background())
	conn, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: conn}
	a.closers = append(a.closers, func() { _ = conn.Close() })

	generator, err := ai.BuildGenerator(cfg.AI.Generator)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init generator: %w", err)
	}
	baseEmbedder, err := ai.BuildEmbedder(cfg.AI.Embedder)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)
	cacheOpts := embedcache.Options{
		LRUSize: cfg.EmbedCache.LRUSize,
		LRUTTL:  time.Duration(cfg.EmbedCache.LRUTTL) * time.Second,
	}
	if cfg.EmbedCache.EnableDB {
		cacheOpts.DB = cacheRepo
	}
	if len(cfg.EmbedCache.Redis.Addrs) > 0 {
		store, err := embedcache.NewRedisStore(embedcache.RedisConfig{
			Addrs:    cfg.EmbedCache.Redis.Addrs,
			Username: cfg.EmbedCache.Redis.Username,
			Password: cfg.EmbedCache.Redis.Password,
			DB:       cfg.EmbedCache.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		cacheOpts.Redis = store
		cacheOpts.RedisTTL = time.Duration(cfg.EmbedCache.Redis.TTL) * time.Second
	}
	manager := ai.NewManager(generator, embedcache.Wrap(baseEmbedder, cacheOpts), ai.ManagerConfig{Timeout: cfg.AI.Timeout})
	logger.Info("ai configured",
		zap.Int("generators", len(cfg.AI.Generator)),
		zap.String("embedder", manager.ModelName()),
	)

	httpClient := &http.Client{}
	if cfg.Search.Timeout > 0 {
		httpClient.Timeout = time.Duration(cfg.Search.Timeout) * time.Second
	}
	provider, err := search.NewProvider(cfg.Search.Provider, search.ProviderArgs{
		APIKey:  cfg.Search.APIKey,
		BaseURL: cfg.Search.BaseURL,
		Client:  httpClient,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init search provider: %w", err)
	}

	a.corpus = repo.NewCorpusRepo(conn)
	images, err := service.NewImageRanker(a.corpus, manager, cfg.Retrieval.ImageWorkers)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, images.Close)

	queries := service.NewQueryService(service.QueryDeps{
		Selector: service.NewDocumentSelector(a.corpus, manager, cfg.Retrieval.MatchCutoff),
		Embedder: manager,
		Passages: service.NewPassageRanker(a.corpus, cfg.Retrieval.RecallFactor),
		Images:   images,
		Answers:  service.NewAnswerSynthesizer(manager),
		Media:    service.NewMediaService(manager, provider, cfg.Search.MaxResult),
	}, service.QueryConfig{
		PassageThreshold: cfg.Retrieval.PassageThreshold,
		ImageThreshold:   cfg.Retrieval.ImageThreshold,
	})
	a.chats = service.NewChatService(queries, repo.NewChatRepo(conn))
	a.documents = service.NewCorpusService(a.corpus)

	a.scheduler = schedule.NewCronScheduler()
	if err := a.scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.EmbedCache.MaxAgeDays), cfg.Jobs.EmbeddingCacheCleanup); err != nil {
		a.Close()
		return nil, fmt.Errorf("schedule jobs: %w", err)
	}
	return a, nil
}
