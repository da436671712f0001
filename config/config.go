// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config contains all runtime settings for the assistant core.
type Config struct {
	// ChatDSN selects the chat store: empty for in-memory,
	// postgres:// for Postgres, anything else is a SQLite path.
	ChatDSN string

	// MemoryDSN selects the long-term backend: empty for embedded
	// chromem, postgres:// for pgvector.
	MemoryDSN string

	// MemoryPersistPath, when set, persists the embedded backend on disk.
	MemoryPersistPath string

	Model     string
	MaxTokens int

	RecallLimit         int
	MemoryMinSimilarity float64
	EmbeddingCacheSize  int

	ShortTermLimit     int
	HistoryTokenBudget int

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr      string
	MetricsNamespace string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		ChatDSN:            envOrDefault("AIDE_CHAT_DSN", ""),
		MemoryDSN:          envOrDefault("AIDE_MEMORY_DSN", ""),
		MemoryPersistPath:  envOrDefault("AIDE_MEMORY_PATH", ""),
		Model:              envOrDefault("AIDE_MODEL", ""),
		MaxTokens:          4096,
		RecallLimit:        5,
		EmbeddingCacheSize: 4096,
		ShortTermLimit:     10,
		HistoryTokenBudget: 0,
		MetricsAddr:        envOrDefault("AIDE_METRICS_ADDR", ""),
		MetricsNamespace:   envOrDefault("AIDE_METRICS_NAMESPACE", "aide"),
	}
	var err error
	cfg.MaxTokens, err = intFromEnv("AIDE_MAX_TOKENS", cfg.MaxTokens)
	if err != nil {
		return Config{}, err
	}
	cfg.RecallLimit, err = intFromEnv("AIDE_RECALL_LIMIT", cfg.RecallLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryMinSimilarity, err = floatFromEnv("AIDE_MEMORY_MIN_SIMILARITY", cfg.MemoryMinSimilarity)
	if err != nil {
		return Config{}, err
	}
	cfg.EmbeddingCacheSize, err = intFromEnv("AIDE_EMBEDDING_CACHE_SIZE", cfg.EmbeddingCacheSize)
	if err != nil {
		return Config{}, err
	}
	cfg.ShortTermLimit, err = intFromEnv("AIDE_SHORT_TERM_LIMIT", cfg.ShortTermLimit)
	if err != nil {
		return Config{}, err
	}
	// 0 disables token budgeting and keeps the short-term window as-is.
	cfg.HistoryTokenBudget, err = intFromEnv("AIDE_HISTORY_TOKEN_BUDGET", cfg.HistoryTokenBudget)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxTokens <= 0 {
		return Config{}, fmt.Errorf("AIDE_MAX_TOKENS must be positive")
	}
	if cfg.RecallLimit <= 0 {
		return Config{}, fmt.Errorf("AIDE_RECALL_LIMIT must be positive")
	}
	if cfg.MemoryMinSimilarity < 0 || cfg.MemoryMinSimilarity > 1 {
		return Config{}, fmt.Errorf("AIDE_MEMORY_MIN_SIMILARITY must be in [0, 1]")
	}
	if cfg.ShortTermLimit <= 0 {
		return Config{}, fmt.Errorf("AIDE_SHORT_TERM_LIMIT must be positive")
	}
	if cfg.HistoryTokenBudget < 0 {
		return Config{}, fmt.Errorf("AIDE_HISTORY_TOKEN_BUDGET must be >= 0")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}
