package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks research-chatbot/internal/rag Engine

import (
	"context"
	"strings"
	"time"

	"research-chatbot/internal/contextutil"
)

// Engine answers research questions from retrieved evidence.
type Engine interface {
	// Answer runs the full pipeline for one question. It never reads or writes conversation state.
	Answer(ctx context.Context, req AnswerRequest) (Result, error)
}

// Option configures the engine.
type Option func(*ragEngine)

// WithSequentialRetrieval issues the expanded queries one at a time.
func WithSequentialRetrieval() Option {
	return func(e *ragEngine) {
		e.aggregator.parallel = false
	}
}

// WithClock overrides the clock used to resolve relative year filters and recency weights.
func WithClock(now func() time.Time) Option {
	return func(e *ragEngine) {
		e.aggregator.now = now
	}
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	models      ModelResolver
	expander    *QueryExpander
	aggregator  *Aggregator
	synthesizer *Synthesizer
	selector    *Selector
}

// NewEngine creates a new RAG engine. Retrieval is parallel unless WithSequentialRetrieval is given.
func NewEngine(
	store EvidenceStore,
	embedder Embedder,
	detector LanguageDetector,
	models ModelResolver,
	opts ...Option,
) Engine {
	e := &ragEngine{
		models:      models,
		expander:    NewQueryExpander(detector),
		aggregator:  NewAggregator(store, true),
		synthesizer: NewSynthesizer(detector),
		selector:    NewSelector(embedder),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer runs expansion, retrieval, synthesis, validation, source selection and repair.
func (e *ragEngine) Answer(ctx context.Context, req AnswerRequest) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	gen, model := e.models.Resolve(req.Model)
	if requested := strings.TrimSpace(req.Model); requested != "" && !strings.EqualFold(requested, model) {
		logger.WarnContext(ctx, "unknown model requested, using default", "requested", req.Model, "model", model)
	}

	logger.InfoContext(ctx, "RAG query started",
		"question_length", len(req.Question),
		"history_turns", len(req.History),
		"filter", req.Filter.String(),
		"model", model,
	)

	queries, err := e.expander.Expand(ctx, gen, req.Question, req.History)
	if err != nil {
		logger.ErrorContext(ctx, "failed to expand query", "error", err)
		return nil, err
	}

	candidates, err := e.aggregator.Aggregate(ctx, queries, req.Filter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to retrieve evidence", "error", err)
		return nil, err
	}
	if len(candidates) == 0 {
		logger.InfoContext(ctx, "no evidence found")
		return NoAnswer{Reason: ReasonNoEvidence, Model: model}, nil
	}

	rephrased := queries[0]
	answer, err := e.synthesizer.Synthesize(ctx, gen, rephrased, candidates)
	if err != nil {
		logger.ErrorContext(ctx, "failed to synthesize answer", "error", err)
		return nil, err
	}

	answered, err := e.synthesizer.Validate(ctx, gen, rephrased, answer)
	if err != nil {
		logger.ErrorContext(ctx, "failed to validate answer", "error", err)
		return nil, err
	}
	if !answered {
		logger.InfoContext(ctx, "answer rejected by validation")
		return NoAnswer{Reason: ReasonNotAnswered, Model: model}, nil
	}

	ranked, err := e.selector.Rank(ctx, answer, candidates)
	if err != nil {
		logger.ErrorContext(ctx, "failed to rank sources", "error", err)
		return nil, err
	}
	sources := SelectSources(ranked)

	final, err := e.synthesizer.Repair(ctx, gen, req.Question, answer)
	if err != nil {
		logger.ErrorContext(ctx, "failed to repair answer language", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "RAG query completed",
		"queries", len(queries),
		"candidates", len(candidates),
		"sources", len(sources),
		"answer_length", len(final),
	)
	return Answered{Text: final, Sources: sources, Model: model}, nil
}
