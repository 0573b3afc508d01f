package rag

import (
	"context"
	"strings"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/llm"
)

// QueryExpander turns one question into an ordered set of retrieval queries.
type QueryExpander struct {
	detector LanguageDetector
}

// NewQueryExpander creates a new query expander.
func NewQueryExpander(detector LanguageDetector) *QueryExpander {
	return &QueryExpander{detector: detector}
}

// Expand returns the rephrased question followed by its translation and one alternative
// phrasing. Only the last HistoryWindow turns of history are used. The first element is
// always the rephrased question; duplicates and blanks are removed.
func (e *QueryExpander) Expand(ctx context.Context, gen llm.Generator, question string, history []Turn) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rephrased, err := e.rephrase(ctx, gen, question, history)
	if err != nil {
		return nil, err
	}

	sourceLang := e.detector.Detect(rephrased)
	targetLang := counterpartLanguage(sourceLang)
	translated, err := translate(ctx, gen, rephrased, targetLang)
	if err != nil {
		return nil, stageError(StageTranslate, err)
	}

	alternatives, err := e.alternatives(ctx, gen, rephrased)
	if err != nil {
		return nil, err
	}

	queries := dedupeQueries(append([]string{rephrased, translated}, alternatives...))

	logger.InfoContext(ctx, "query expanded",
		"queries", len(queries),
		"history_turns", min(len(history), HistoryWindow),
		"source_language", sourceLang,
		"target_language", targetLang,
	)
	logger.DebugContext(ctx, "expanded queries", "queries", queries)
	return queries, nil
}

func (e *QueryExpander) rephrase(ctx context.Context, gen llm.Generator, question string, history []Turn) (string, error) {
	if len(history) == 0 {
		return question, nil
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	rephrased, err := gen.Generate(ctx, rephrasePrompt, map[string]string{
		"chat_history": formatHistory(history),
		"query":        question,
	})
	if err != nil {
		return "", stageError(StageRephrase, err)
	}
	if strings.TrimSpace(rephrased) == "" {
		return question, nil
	}
	return rephrased, nil
}

func (e *QueryExpander) alternatives(ctx context.Context, gen llm.Generator, question string) ([]string, error) {
	out, err := gen.Generate(ctx, multiQueryPrompt, map[string]string{"question": question})
	if err != nil {
		return nil, stageError(StageMultiQuery, err)
	}

	var queries []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		queries = append(queries, strings.TrimRight(line, " \t\r"))
	}
	return queries, nil
}

// dedupeQueries drops empty strings and exact duplicates, keeping first occurrences.
func dedupeQueries(queries []string) []string {
	seen := make(map[string]bool, len(queries))
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	return out
}
