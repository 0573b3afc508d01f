package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks research-chatbot/internal/vectorstore VectorStore

import "context"

// YearRange restricts a search to documents whose year lies in [From, To], inclusive.
// An exact year is expressed as From == To.
type YearRange struct {
	From int
	To   int
}

// Exact reports whether the range selects a single year.
func (r YearRange) Exact() bool {
	return r.From == r.To
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the read side of the evidence index.
type VectorStore interface {
	// Search performs a similarity search, optionally restricted to a year range.
	Search(ctx context.Context, collection string, query []float32, k int, years *YearRange) ([]SearchResult, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
