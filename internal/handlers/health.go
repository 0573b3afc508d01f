package handlers

import (
	"context"
	"net/http"
	"time"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/vectorstore"
)

const (
	checkOK      = "ok"
	checkFailed  = "error"
	checkSkipped = "skipped"
)

// HealthHandler reports whether the evidence collection can be searched.
type HealthHandler struct {
	vectorStore vectorstore.VectorStore
	collection  string
	timeout     time.Duration
}

// NewHealthHandler creates a new HealthHandler for collection.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		vectorStore: vectorStore,
		collection:  collection,
		timeout:     5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// "healthy" or "unhealthy"
	Status string `json:"status"`

	// Evidence collection that was checked
	Collection string `json:"collection"`

	Timestamp string `json:"timestamp"`

	// Per-check results: vector_store and collection, each "ok", "error" or "skipped"
	Checks map[string]string `json:"checks"`

	// Failed checks, only present when unhealthy
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Reports whether the vector store is reachable and the evidence collection exists.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Collection is searchable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: Vector store unreachable or collection missing
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checks, issues := h.check(ctx)

	resp := HealthResponse{
		Status:     "healthy",
		Collection: h.collection,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Checks:     checks,
		Issues:     issues,
	}
	status := http.StatusOK
	if len(issues) > 0 {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, ctx, status, resp)
}

// check probes the store once. A store error means the collection could not be checked.
func (h *HealthHandler) check(ctx context.Context) (map[string]string, []string) {
	logger := contextutil.LoggerFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	exists, err := h.vectorStore.CollectionExists(ctx, h.collection)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return map[string]string{"vector_store": checkFailed, "collection": checkSkipped},
			[]string{"vector_store_unreachable"}
	}
	if !exists {
		logger.WarnContext(ctx, "evidence collection does not exist", "collection", h.collection)
		return map[string]string{"vector_store": checkOK, "collection": checkFailed},
			[]string{"collection_missing"}
	}
	return map[string]string{"vector_store": checkOK, "collection": checkOK}, nil
}
