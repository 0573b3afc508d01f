package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"research-chatbot/internal/handlers"
	"research-chatbot/internal/service"
	"research-chatbot/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QueryService service.QueryService
	VectorStore  vectorstore.VectorStore
	// Collection is the evidence collection checked by the health endpoint.
	Collection string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	// Add CORS middleware
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.QueryService)
	sessionHandler := handlers.NewSessionHandler(deps.QueryService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Post("/reset", sessionHandler.Reset)
			r.Get("/history", sessionHandler.History)
		})
	})

	return r
}
