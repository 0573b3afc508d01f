package rag

import (
	"context"
	"fmt"
	"math"
	"slices"

	"research-chatbot/internal/contextutil"
)

const (
	// strongScore is accepted regardless of position.
	strongScore = 0.80
	// weakTopScore below which the top source is returned alone.
	weakTopScore = 0.70
	// secondGap is the allowed distance from the top score for the second source.
	secondGap = 0.10
	// laterGap is the allowed distance from the top score for every other source.
	laterGap = 0.05
	// unknownSource labels candidates without a recorded source.
	unknownSource = "Unknown"
)

// Selector ranks candidates by similarity to the answer and picks the sources to cite.
type Selector struct {
	embedder Embedder
}

// NewSelector creates a new selector.
func NewSelector(embedder Embedder) *Selector {
	return &Selector{embedder: embedder}
}

// Rank scores every candidate by cosine similarity between its content and answer,
// highest first. Ties keep candidate order.
func (s *Selector) Rank(ctx context.Context, answer string, candidates []Candidate) ([]ScoredSource, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	answerVec, err := s.embedder.Embed(ctx, answer)
	if err != nil {
		return nil, stageError(StageRank, fmt.Errorf("failed to embed answer: %w", err))
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, stageError(StageRank, fmt.Errorf("failed to embed candidates: %w", err))
	}
	if len(vectors) != len(candidates) {
		return nil, stageError(StageRank, fmt.Errorf("expected %d embeddings, got %d", len(candidates), len(vectors)))
	}

	ranked := make([]ScoredSource, len(candidates))
	for i, c := range candidates {
		source := c.Source
		if source == "" {
			source = unknownSource
		}
		ranked[i] = ScoredSource{Source: source, Score: CosineSimilarity(answerVec, vectors[i])}
	}
	slices.SortStableFunc(ranked, func(a, b ScoredSource) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "candidates ranked against answer",
		"candidates", len(ranked),
		"top_score", ranked[0].Score,
	)
	return ranked, nil
}

// SelectSources picks the sources to cite from ranked evidence, highest score first.
// Each source is cited once. A source scoring at least 0.80 is always kept. When the top
// score is below 0.70 only the top source is returned. Otherwise the top source is kept,
// the second is kept within 0.10 of the top score and any later one within 0.05.
func SelectSources(ranked []ScoredSource) []ScoredSource {
	var selected []ScoredSource
	seen := make(map[string]bool)

	for i, item := range ranked {
		if seen[item.Source] {
			continue
		}

		accept := false
		switch {
		case item.Score >= strongScore:
			accept = true
		case i == 0 && item.Score < weakTopScore:
			return []ScoredSource{ranked[0]}
		case i == 0:
			accept = true
		case i == 1:
			accept = math.Abs(ranked[0].Score-item.Score) <= secondGap
		default:
			accept = math.Abs(ranked[0].Score-item.Score) <= laterGap
		}

		if accept {
			selected = append(selected, item)
			seen[item.Source] = true
		}
	}
	return selected
}

// CosineSimilarity returns the cosine of the angle between a and b, accumulated in float64.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
