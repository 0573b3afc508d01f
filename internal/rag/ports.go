package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ports.go -package=mocks research-chatbot/internal/rag EvidenceStore,Embedder,LanguageDetector,ModelResolver

import (
	"context"

	"research-chatbot/internal/llm"
	"research-chatbot/internal/vectorstore"
)

// EvidenceStore retrieves candidate passages for a text query.
// This interface is defined from the pipeline's perspective (consumer-first).
type EvidenceStore interface {
	Search(ctx context.Context, query string, k int, years *vectorstore.YearRange) ([]Candidate, error)
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LanguageDetector returns the ISO 639-1 code of a text's language, or "" if unknown.
type LanguageDetector interface {
	Detect(text string) string
}

// ModelResolver maps a model variant name to a generator. It returns the variant name actually used.
type ModelResolver interface {
	Resolve(name string) (llm.Generator, string)
}
