// Command aide runs a terminal REPL over the assistant core: one owner,
// one conversation per process, memory shared across runs when a
// persistent backend is configured.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/loomworks/aide/chat"
	"github.com/loomworks/aide/classify"
	"github.com/loomworks/aide/config"
	"github.com/loomworks/aide/core"
	"github.com/loomworks/aide/document"
	"github.com/loomworks/aide/memory"
	"github.com/loomworks/aide/memory/embedder/cache"
	"github.com/loomworks/aide/memory/embedder/mock"
	"github.com/loomworks/aide/memory/store/chromem"
	"github.com/loomworks/aide/memory/store/pgvector"
	"github.com/loomworks/aide/mode"
	"github.com/loomworks/aide/model/anthropic"
	"github.com/loomworks/aide/observe"
	"github.com/loomworks/aide/orchestrate"
	"github.com/loomworks/aide/prompt"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[MAIN] %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return errors.New("ANTHROPIC_API_KEY environment variable is required")
	}

	// Embedder: deterministic local hashing, fronted by a cache so
	// repeated classifications of the same text embed once.
	embedder, err := cache.New(mock.New(), int64(cfg.EmbeddingCacheSize))
	if err != nil {
		return fmt.Errorf("embedding cache: %w", err)
	}

	backend, err := newMemoryBackend(ctx, cfg, embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("memory backend: %w", err)
	}
	defer backend.Close()

	longTerm := memory.New(backend, embedder, &memory.Config{
		RecallLimit:   cfg.RecallLimit,
		MinSimilarity: float32(cfg.MemoryMinSimilarity),
	})

	chats, err := chat.NewStore(ctx, cfg.ChatDSN)
	if err != nil {
		return fmt.Errorf("chat store: %w", err)
	}
	defer chats.Close()

	sdkClient := sdk.NewClient(option.WithAPIKey(apiKey))
	modelOpts := []anthropic.Option{anthropic.WithMaxTokens(int64(cfg.MaxTokens))}
	if cfg.Model != "" {
		modelOpts = append(modelOpts, anthropic.WithModel(cfg.Model))
	}
	model := anthropic.New(&sdkClient, modelOpts...)

	assemblerOpts := []prompt.Option{}
	if cfg.HistoryTokenBudget > 0 {
		counter, err := prompt.NewTiktokenCounter()
		if err != nil {
			return fmt.Errorf("token counter: %w", err)
		}
		assemblerOpts = append(assemblerOpts, prompt.WithHistoryBudget(counter, cfg.HistoryTokenBudget))
	}

	orcOpts := []orchestrate.Option{
		orchestrate.WithExtractor(document.NewLoaderExtractor()),
		orchestrate.WithHistoryLimit(cfg.ShortTermLimit),
	}
	if cfg.MetricsAddr != "" {
		metrics := observe.NewMetrics(cfg.MetricsNamespace)
		orcOpts = append(orcOpts, orchestrate.WithMetrics(metrics))
		go func() {
			log.Printf("[MAIN] Serving metrics on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, observe.MetricsHandler()); err != nil {
				log.Printf("[MAIN] Metrics server stopped: %v", err)
			}
		}()
	}

	orc := orchestrate.New(
		classify.NewModelClassifier(model),
		longTerm,
		chats,
		mode.NewStatic(nil),
		prompt.NewAssembler(assemblerOpts...),
		model,
		orcOpts...,
	)

	ownerID := envOr("AIDE_OWNER_ID", "local")
	conversationID := envOr("AIDE_CONVERSATION_ID", uuid.NewString())
	log.Printf("[MAIN] owner=%s conversation=%s", ownerID, conversationID)

	return repl(ctx, orc, ownerID, conversationID)
}

func newMemoryBackend(ctx context.Context, cfg config.Config, dim int) (memory.Backend, error) {
	if strings.HasPrefix(cfg.MemoryDSN, "postgres://") || strings.HasPrefix(cfg.MemoryDSN, "postgresql://") {
		return pgvector.New(ctx, cfg.MemoryDSN, dim)
	}
	if cfg.MemoryPersistPath != "" {
		return chromem.NewPersistent(cfg.MemoryPersistPath)
	}
	return chromem.New(), nil
}

func repl(ctx context.Context, orc *orchestrate.Orchestrator, ownerID, conversationID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Type a message (or 'exit' to quit):")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" {
			fmt.Println("Goodbye!")
			break
		}

		res, err := orc.HandleTurn(ctx, orchestrate.Request{
			OwnerID:        ownerID,
			ConversationID: conversationID,
			Content:        input,
		})
		if err != nil {
			if res != nil {
				// Reply arrived but the memory write failed; show both.
				fmt.Println(res.Reply)
			}
			if errors.Is(err, core.ErrModelUnavailable) {
				log.Printf("[MAIN] Model unavailable, turn dropped: %v", err)
				continue
			}
			log.Printf("[MAIN] Turn degraded: %v", err)
			continue
		}
		fmt.Println(res.Reply)
	}
	return scanner.Err()
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
