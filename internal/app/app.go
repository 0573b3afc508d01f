// Package app assembles the question answering pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"research-chatbot/internal/config"
	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/conversation"
	"research-chatbot/internal/langdetect"
	"research-chatbot/internal/llm"
	"research-chatbot/internal/rag"
	"research-chatbot/internal/service"
	"research-chatbot/internal/storage"
	"research-chatbot/internal/vectorstore"
)

// App holds the wired components shared by the API server and the CLI.
type App struct {
	QueryService service.QueryService
	VectorStore  vectorstore.VectorStore
	Collection   string

	closers []func() error
}

// New connects to the vector store, the model backends and the history store described by cfg.
// The collection must already exist with vectors of cfg.QdrantVectorSize dimensions.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)
	a := &App{Collection: cfg.QdrantCollection}

	models, err := newModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "model variants registered",
		"provider", cfg.LLMProvider,
		"variants", models.Names(),
		"default", models.Default(),
	)

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := langdetect.New(cfg.DetectLanguages)
	if err != nil {
		return nil, fmt.Errorf("failed to create language detector: %w", err)
	}

	qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantYearField)
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	a.closers = append(a.closers, qdrantStore.Close)
	a.VectorStore = qdrantStore

	if err := qdrantStore.ValidateCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to validate Qdrant collection: %w", err)
	}

	// Fail fast when the embedding model does not match the collection.
	probe, err := embedder.Embed(ctx, "test")
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to validate embedding client: %w", err)
	}
	if len(probe) != cfg.QdrantVectorSize {
		_ = a.Close()
		return nil, fmt.Errorf("embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(probe))
	}
	logger.InfoContext(ctx, "embedding client validated", "vector_size", cfg.QdrantVectorSize)

	history, err := a.newHistory(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var opts []rag.Option
	if !cfg.ParallelRetrieval {
		opts = append(opts, rag.WithSequentialRetrieval())
	}
	engine := rag.NewEngine(
		rag.NewVectorEvidenceStore(qdrantStore, embedder, cfg.QdrantCollection),
		embedder,
		detector,
		models,
		opts...,
	)

	a.QueryService = service.NewQueryService(engine, history)
	return a, nil
}

// Close releases the connections opened by New, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newModels(ctx context.Context, cfg *config.Config) (*llm.Registry, error) {
	var (
		chat       llm.Chatter
		localModel string
	)

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		chat = llm.NewOpenAI(cfg.LLMAPIKey, cfg.LLMBaseURL, "", nil)
	case config.ProviderLocal:
		chat = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMLocalModel)
		localModel = cfg.LLMLocalModel

		// Not every local server supports on-demand loading.
		if err := llm.NewModelLoader(cfg.LLMBaseURL).EnsureLoaded(ctx, localModel); err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to preload local model",
				"model", localModel,
				"error", err,
			)
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}

	registry, err := llm.NewVariantRegistry(chat, llm.DefaultVariants, cfg.LLMDefaultModel, localModel)
	if err != nil {
		return nil, fmt.Errorf("failed to register model variants: %w", err)
	}
	return registry, nil
}

func newEmbedder(cfg *config.Config) (llm.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIEmbedder(cfg.LLMAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.QdrantVectorSize), nil
	case config.ProviderLocal:
		return llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// newHistory returns the SQLite turn store when a database path is configured, otherwise
// an in-memory store that lives as long as the process.
func (a *App) newHistory(ctx context.Context, cfg *config.Config) (conversation.Store, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if cfg.HistoryDBPath == "" {
		logger.InfoContext(ctx, "using in-memory conversation history")
		return conversation.NewMemoryStore(), nil
	}

	db, err := storage.New(cfg.HistoryDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if err := storage.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "history database initialized", "path", cfg.HistoryDBPath)

	return storage.NewTurnRepo(db), nil
}
