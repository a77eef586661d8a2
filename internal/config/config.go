package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       int              `json:"port" yaml:"port"`
	Database   DatabaseConfig   `json:"database" yaml:"database"`
	LogConfig  logger.LogConfig `json:"log_config" yaml:"log_config"`
	AI         AIConfig         `json:"ai" yaml:"ai"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	EmbedCache EmbedCacheConfig `json:"embed_cache" yaml:"embed_cache"`
	RateLimit  RateLimitConfig  `json:"rate_limit" yaml:"rate_limit"`
	CORS       []string         `json:"cors" yaml:"cors"`
	Jobs       JobsConfig       `json:"jobs" yaml:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn" yaml:"dsn"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`
}

type AIConfig struct {
	Generator []ProviderConfig `json:"generator" yaml:"generator"`
	Embedder  []ProviderConfig `json:"embedder" yaml:"embedder"`
	// Timeout is in seconds; 0 leaves calls unbounded.
	Timeout int `json:"timeout" yaml:"timeout"`
}

// ProviderConfig selects one provider; Data is handed to the provider factory.
type ProviderConfig struct {
	Provider string                 `json:"provider" yaml:"provider"`
	Model    string                 `json:"model" yaml:"model"`
	Data     map[string]interface{} `json:"data" yaml:"data"`
}

type SearchConfig struct {
	Provider  string `json:"provider" yaml:"provider"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	MaxResult int    `json:"max_result" yaml:"max_result"`
	Timeout   int    `json:"timeout" yaml:"timeout"`
}

type RetrievalConfig struct {
	PassageThreshold float64 `json:"passage_threshold" yaml:"passage_threshold"`
	RecallFactor     float64 `json:"recall_factor" yaml:"recall_factor"`
	ImageThreshold   float64 `json:"image_threshold" yaml:"image_threshold"`
	MatchCutoff      float64 `json:"match_cutoff" yaml:"match_cutoff"`
	ImageWorkers     int     `json:"image_workers" yaml:"image_workers"`
}

type EmbedCacheConfig struct {
	LRUSize    int         `json:"lru_size" yaml:"lru_size"`
	LRUTTL     int         `json:"lru_ttl" yaml:"lru_ttl"`
	EnableDB   bool        `json:"enable_db" yaml:"enable_db"`
	Redis      RedisConfig `json:"redis" yaml:"redis"`
	MaxAgeDays int         `json:"max_age_days" yaml:"max_age_days"`
}

type RedisConfig struct {
	Addrs    []string `json:"addrs" yaml:"addrs"`
	Username string   `json:"username" yaml:"username"`
	Password string   `json:"password" yaml:"password"`
	DB       int      `json:"db" yaml:"db"`
	TTL      int      `json:"ttl" yaml:"ttl"`
}

type RateLimitConfig struct {
	// WindowSeconds is the minimum gap between two queries from one client; 0 disables.
	WindowSeconds int `json:"window_seconds" yaml:"window_seconds"`
}

type JobsConfig struct {
	EmbeddingCacheCleanup string `json:"embedding_cache_cleanup" yaml:"embedding_cache_cleanup"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes raw config bytes. ${VAR} references are expanded from the
// environment before decoding, so secrets can stay in .env files.
func Parse(raw []byte, ext string) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	default:
		if err := json.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if len(c.AI.Generator) == 0 {
		return fmt.Errorf("ai.generator is required")
	}
	if len(c.AI.Embedder) == 0 {
		return fmt.Errorf("ai.embedder is required")
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative")
	}
	if c.LogConfig.Level == "" {
		c.LogConfig.Level = "info"
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "serpapi"
	}
	if c.Search.MaxResult <= 0 {
		c.Search.MaxResult = 5
	}
	if c.Retrieval.PassageThreshold == 0 {
		c.Retrieval.PassageThreshold = 0.5
	}
	if c.Retrieval.RecallFactor == 0 {
		c.Retrieval.RecallFactor = 0.8
	}
	if c.Retrieval.ImageThreshold == 0 {
		c.Retrieval.ImageThreshold = 0.6
	}
	if c.Retrieval.MatchCutoff == 0 {
		c.Retrieval.MatchCutoff = 0.6
	}
	if c.Retrieval.ImageWorkers <= 0 {
		c.Retrieval.ImageWorkers = 4
	}
	if c.Retrieval.RecallFactor < 0 || c.Retrieval.RecallFactor > 1 {
		return fmt.Errorf("retrieval.recall_factor must be within (0, 1]")
	}
	if c.EmbedCache.MaxAgeDays <= 0 {
		c.EmbedCache.MaxAgeDays = 30
	}
	if c.Jobs.EmbeddingCacheCleanup == "" {
		c.Jobs.EmbeddingCacheCleanup = "0 3 * * *"
	}
	return nil
}
