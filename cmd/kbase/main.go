package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/kbase-labs/kbase/internal/adapters/driven/config/file"
	embedollama "github.com/kbase-labs/kbase/internal/adapters/driven/embedding/ollama"
	"github.com/kbase-labs/kbase/internal/adapters/driven/history/sqlite"
	llmollama "github.com/kbase-labs/kbase/internal/adapters/driven/llm/ollama"
	"github.com/kbase-labs/kbase/internal/adapters/driving/cli"
	"github.com/kbase-labs/kbase/internal/chunker"
	"github.com/kbase-labs/kbase/internal/core/services"
	"github.com/kbase-labs/kbase/internal/extractors"
	"github.com/kbase-labs/kbase/internal/logger"
	"github.com/kbase-labs/kbase/internal/vectorindex/flat"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; KBASE_* variables override the config file.
	_ = godotenv.Load()

	store, err := file.NewStore(os.Getenv("KBASE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	embedder := embedollama.NewEmbeddingService(embedollama.Config{
		BaseURL:    settings.OllamaURL,
		Model:      settings.EmbeddingModel,
		Dimensions: settings.EmbeddingDimensions,
	})
	defer embedder.Close()

	llm := llmollama.NewLLMService(llmollama.LLMConfig{
		BaseURL: settings.OllamaURL,
		Model:   settings.LLMModel,
	})
	defer llm.Close()

	index, err := flat.New(settings.EmbeddingDimensions)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	registry := extractors.NewRegistry()
	ch := chunker.New(
		chunker.WithChunkSize(settings.ChunkSize),
		chunker.WithOverlap(settings.ChunkOverlap),
	)

	knowledge := services.NewKnowledgeService(settings.DataDir, ch, registry, embedder, index)
	if err := knowledge.Load(); err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	history, err := sqlite.New(filepath.Join(settings.DataDir, "history.db"))
	if err != nil {
		// History is advisory; run without it rather than failing.
		logger.Warn("ingest history unavailable: %v", err)
	} else {
		knowledge.SetIngestHistory(history)
		defer history.Close()
	}

	answers := services.NewAnswerService(knowledge, llm)

	svcs := cli.Services{
		Knowledge:  knowledge,
		Answers:    answers,
		Extractors: registry,
		Settings:   settings,
	}
	if history != nil {
		svcs.History = history
	}
	cli.SetServices(svcs)

	start := time.Now()
	err = cli.Execute()
	logger.Debug("command finished in %s", time.Since(start))
	return err
}
