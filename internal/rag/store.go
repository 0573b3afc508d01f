package rag

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/vectorstore"
)

// contentKeys are the payload fields checked, in order, for the passage text.
var contentKeys = []string{"page_content", "content", "text"}

// VectorEvidenceStore adapts a vector store collection to EvidenceStore by embedding the query text.
type VectorEvidenceStore struct {
	store      vectorstore.VectorStore
	embedder   Embedder
	collection string
}

// NewVectorEvidenceStore creates an evidence store that searches collection.
func NewVectorEvidenceStore(store vectorstore.VectorStore, embedder Embedder, collection string) *VectorEvidenceStore {
	return &VectorEvidenceStore{
		store:      store,
		embedder:   embedder,
		collection: collection,
	}
}

// Search embeds query and returns the k nearest passages, optionally restricted to years.
// Points without text content are skipped.
func (s *VectorEvidenceStore) Search(ctx context.Context, query string, k int, years *vectorstore.YearRange) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.store.Search(ctx, s.collection, vector, k, years)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", s.collection, err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		content := payloadString(r.Meta, contentKeys...)
		if content == "" {
			logger.WarnContext(ctx, "skipping point without content", "point_id", r.PointID)
			continue
		}

		score := float64(r.Score)
		c := Candidate{
			Content: content,
			Source:  metadataString(r.Meta, "source"),
			Score:   &score,
		}
		if year, ok := metadataYear(r.Meta); ok {
			c.Year = &year
		}
		candidates = append(candidates, c)
	}

	logger.DebugContext(ctx, "evidence search completed",
		"k", k,
		"results", len(results),
		"candidates", len(candidates),
	)
	return candidates, nil
}

func payloadString(meta map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := meta[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// metadataValue looks up key at the top level of the payload, then under "metadata".
func metadataValue(meta map[string]any, key string) (any, bool) {
	if v, ok := meta[key]; ok && v != nil {
		return v, true
	}
	if nested, ok := meta["metadata"].(map[string]any); ok {
		if v, ok := nested[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func metadataString(meta map[string]any, key string) string {
	v, ok := metadataValue(meta, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func metadataYear(meta map[string]any) (int, bool) {
	v, ok := metadataValue(meta, "year")
	if !ok {
		return 0, false
	}
	switch year := v.(type) {
	case int64:
		return int(year), true
	case int:
		return year, true
	case float64:
		return int(year), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
