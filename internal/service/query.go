package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_query_service.go -package=mocks research-chatbot/internal/service QueryService

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/conversation"
	"research-chatbot/internal/rag"
)

// AskRequest represents a question in the domain layer.
type AskRequest struct {
	SessionID string `json:"session_id" validate:"required,notblank,max=128"`
	Question  string `json:"question" validate:"required,notblank"`
	// Filters is the raw filter object; malformed entries are ignored.
	Filters map[string]any `json:"filters"`
	// Model is the model variant name; empty uses the default variant.
	Model string `json:"llm_model" validate:"max=64"`
}

// AskResponse represents the answer in the domain layer.
type AskResponse struct {
	Answer string
	// Source is the formatted citation line.
	Source  string
	Sources []rag.ScoredSource
	// Abstained is true when no answer was produced and Answer is the sentinel.
	Abstained bool
	Reason    rag.NoAnswerReason
	Model     string
	SessionID string
}

// QueryService answers questions within conversation sessions.
type QueryService interface {
	// Ask answers a question using the last turns of the session as context.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// History returns every turn of the session, oldest first.
	History(ctx context.Context, sessionID string) ([]rag.Turn, error)
	// Reset clears the session's turns.
	Reset(ctx context.Context, sessionID string) error
}

// queryService implements QueryService.
type queryService struct {
	engine   rag.Engine
	history  conversation.Store
	validate *validator.Validate
}

// NewQueryService creates a new QueryService.
func NewQueryService(engine rag.Engine, history conversation.Store) QueryService {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &queryService{
		engine:   engine,
		history:  history,
		validate: v,
	}
}

// Ask answers req.Question. History is only extended when an answer was produced.
func (s *queryService) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.validateRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid ask request", "error", err)
		return AskResponse{}, err
	}

	turns, err := s.history.Recent(ctx, req.SessionID, rag.HistoryWindow)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load history", "session_id", req.SessionID, "error", err)
		return AskResponse{}, WrapError(err, "failed to load history")
	}

	result, err := s.engine.Answer(ctx, rag.AnswerRequest{
		Question: req.Question,
		History:  turns,
		Filter:   rag.ParseFilter(ctx, req.Filters),
		Model:    req.Model,
	})
	if errors.Is(err, rag.ErrEmptyQuestion) {
		return AskResponse{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "session_id", req.SessionID, "error", err)
		return AskResponse{}, externalError(err, "failed to answer question")
	}

	switch r := result.(type) {
	case rag.Answered:
		turn := rag.Turn{UserQuestion: req.Question, AIAnswer: r.Text}
		if err := s.history.Add(ctx, req.SessionID, turn); err != nil {
			logger.ErrorContext(ctx, "failed to record turn", "session_id", req.SessionID, "error", err)
		}

		logger.InfoContext(ctx, "question answered",
			"session_id", req.SessionID,
			"sources", len(r.Sources),
			"model", r.Model,
		)
		return AskResponse{
			Answer:    r.Text,
			Source:    rag.FormatSources(r.Sources),
			Sources:   r.Sources,
			Model:     r.Model,
			SessionID: req.SessionID,
		}, nil

	case rag.NoAnswer:
		logger.InfoContext(ctx, "no answer produced",
			"session_id", req.SessionID,
			"reason", r.Reason,
			"model", r.Model,
		)
		return AskResponse{
			Answer:    rag.NoResponse,
			Source:    rag.NoSourceDetails,
			Abstained: true,
			Reason:    r.Reason,
			Model:     r.Model,
			SessionID: req.SessionID,
		}, nil

	default:
		return AskResponse{}, fmt.Errorf("unexpected result type %T", result)
	}
}

// History returns every turn of the session.
func (s *queryService) History(ctx context.Context, sessionID string) ([]rag.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}

	turns, err := s.history.Get(ctx, sessionID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to load history", "session_id", sessionID, "error", err)
		return nil, WrapError(err, "failed to load history")
	}
	return turns, nil
}

// Reset clears the session's turns.
func (s *queryService) Reset(ctx context.Context, sessionID string) error {
	logger := contextutil.LoggerFromContext(ctx)
	if strings.TrimSpace(sessionID) == "" {
		return &ValidationError{Field: "session_id", Message: "cannot be empty"}
	}

	if err := s.history.Reset(ctx, sessionID); err != nil {
		logger.ErrorContext(ctx, "failed to reset session", "session_id", sessionID, "error", err)
		return WrapError(err, "failed to reset session")
	}

	logger.InfoContext(ctx, "session reset", "session_id", sessionID)
	return nil
}

// validateRequest converts the first struct validation failure into a ValidationError.
func (s *queryService) validateRequest(req AskRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "request", Message: err.Error()}
	}

	fe := fieldErrs[0]
	msg := "is invalid"
	switch fe.Tag() {
	case "required", "notblank":
		msg = "cannot be empty"
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
