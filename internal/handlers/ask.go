package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/service"
)

// AskHandler handles HTTP requests for research questions.
type AskHandler struct {
	queryService service.QueryService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(queryService service.QueryService) *AskHandler {
	return &AskHandler{
		queryService: queryService,
	}
}

// AskRequest represents the HTTP request payload for questions.
//
// swagger:model AskRequest
type AskRequest struct {
	// The question to answer
	Question string `json:"question"`

	// Optional filter: {"year": 2021}, {"yearRange": {"startYear": 2018, "endYear": 2020}},
	// {"pastYears": 3}, plus an optional {"alpha": 0.5} recency weight
	Filters map[string]any `json:"filters,omitempty"`
}

// SourceResponse is a cited source with its similarity to the answer.
//
// swagger:model SourceResponse
type SourceResponse struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// AskResponse represents the HTTP response payload for questions.
//
// swagger:model AskResponse
type AskResponse struct {
	// The answer, or "No-Response" when none could be given
	Answer string `json:"answer"`

	// Up to three source file names joined with " | "
	Source string `json:"source"`

	// Cited sources with their scores
	Sources []SourceResponse `json:"sources"`

	// Abstained indicates that no answer was produced.
	Abstained bool `json:"abstained"`

	// Reason for abstention: "no_evidence" or "not_answered"
	Reason string `json:"reason,omitempty"`

	// Model variant that produced the answer
	Model string `json:"model"`

	// Session the turn belongs to
	SessionID string `json:"session_id"`
}

// ServeHTTP handles HTTP requests for questions.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a research question
//
// Expands the question into several queries, retrieves evidence, and answers from it.
// The last two turns of the session are used to resolve follow-up questions.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/AskRequest"
//   - in: query
//     name: session_id
//     type: string
//     description: Conversation session; a new one is created when omitted
//     required: false
//   - in: query
//     name: llm_model
//     type: string
//     description: Model variant (4o, 4o-mini, o1, o1-mini, o3-mini)
//     required: false
//
// responses:
//
//	'200':
//	  description: Answer with sources, or an abstention
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (empty question or invalid body)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error (LLM, embedding or vector store failure)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = NewSessionID()
		logger.InfoContext(ctx, "created session", "session_id", sessionID)
	}

	resp, err := h.queryService.Ask(ctx, service.AskRequest{
		SessionID: sessionID,
		Question:  req.Question,
		Filters:   req.Filters,
		Model:     r.URL.Query().Get("llm_model"),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	sources := make([]SourceResponse, len(resp.Sources))
	for i, s := range resp.Sources {
		sources[i] = SourceResponse{Source: s.Source, Score: s.Score}
	}

	writeJSON(w, ctx, http.StatusOK, AskResponse{
		Answer:    resp.Answer,
		Source:    resp.Source,
		Sources:   sources,
		Abstained: resp.Abstained,
		Reason:    string(resp.Reason),
		Model:     resp.Model,
		SessionID: resp.SessionID,
	})
}

// NewSessionID returns a random 32-character hex session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
