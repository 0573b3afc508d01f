package handlers

import (
	"net/http"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/service"
)

// TurnResponse is one question and answer of a session.
//
// swagger:model TurnResponse
type TurnResponse struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// HistoryResponse lists the turns of a session, oldest first.
//
// swagger:model HistoryResponse
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

// SessionHandler serves the history and reset endpoints of a conversation session.
type SessionHandler struct {
	queryService service.QueryService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(queryService service.QueryService) *SessionHandler {
	return &SessionHandler{
		queryService: queryService,
	}
}

// History returns the turns of a session.
//
// swagger:route GET /api/v1/history sessionHistory
//
// # Conversation history
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Turns of the session
//	  schema:
//	    "$ref": "#/definitions/HistoryResponse"
//	'400':
//	  description: Missing session_id
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")

	turns, err := h.queryService.History(ctx, sessionID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load history")
		return
	}

	resp := HistoryResponse{SessionID: sessionID, Turns: make([]TurnResponse, len(turns))}
	for i, t := range turns {
		resp.Turns[i] = TurnResponse{User: t.UserQuestion, AI: t.AIAnswer}
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// Reset clears the turns of a session.
//
// swagger:route POST /api/v1/reset sessionReset
//
// # Reset a conversation
//
// ---
// responses:
//
//	'204':
//	  description: Session cleared
//	'400':
//	  description: Missing session_id
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.URL.Query().Get("session_id")

	if err := h.queryService.Reset(ctx, sessionID); err != nil {
		handleServiceError(w, ctx, err, "Failed to reset session")
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "session cleared", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
