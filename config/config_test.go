package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecallLimit != 5 {
		t.Fatalf("RecallLimit = %d, want 5", cfg.RecallLimit)
	}
	if cfg.ShortTermLimit != 10 {
		t.Fatalf("ShortTermLimit = %d, want 10", cfg.ShortTermLimit)
	}
	if cfg.MaxTokens != 4096 {
		t.Fatalf("MaxTokens = %d, want 4096", cfg.MaxTokens)
	}
	if cfg.MetricsNamespace != "aide" {
		t.Fatalf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
}

func TestLoadOverridesAndValidation(t *testing.T) {
	t.Setenv("AIDE_RECALL_LIMIT", "8")
	t.Setenv("AIDE_MEMORY_MIN_SIMILARITY", "0.25")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecallLimit != 8 {
		t.Fatalf("RecallLimit = %d, want 8", cfg.RecallLimit)
	}
	if cfg.MemoryMinSimilarity != 0.25 {
		t.Fatalf("MemoryMinSimilarity = %v, want 0.25", cfg.MemoryMinSimilarity)
	}

	t.Setenv("AIDE_RECALL_LIMIT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error for AIDE_RECALL_LIMIT")
	}

	t.Setenv("AIDE_RECALL_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for zero recall limit")
	}

	t.Setenv("AIDE_RECALL_LIMIT", "5")
	t.Setenv("AIDE_MEMORY_MIN_SIMILARITY", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for out-of-range similarity")
	}
}
