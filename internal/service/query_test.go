package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	convmocks "research-chatbot/internal/conversation/mocks"
	"research-chatbot/internal/rag"
	ragmocks "research-chatbot/internal/rag/mocks"
	"research-chatbot/internal/service"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testContext returns a context for testing.
// The default logger is already set to discard in init().
func testContext() context.Context {
	return context.Background()
}

func TestNewQueryService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewQueryService(ragmocks.NewMockEngine(ctrl), convmocks.NewMockStore(ctrl))
	if svc == nil {
		t.Fatal("NewQueryService() returned nil")
	}
}

func TestQueryService_Ask(t *testing.T) {
	history := []rag.Turn{{UserQuestion: "What is a stator?", AIAnswer: "The fixed part."}}
	sources := []rag.ScoredSource{{Source: "docs/a.pdf", Score: 0.9}, {Source: `C:\docs\b.pdf`, Score: 0.85}}

	tests := []struct {
		name        string
		req         service.AskRequest
		mockSetup   func(engine *ragmocks.MockEngine, store *convmocks.MockStore)
		wantErr     bool
		checkErr    func(error) bool
		wantAnswer  string
		wantSource  string
		wantAbstain bool
	}{
		{
			name: "answered appends history",
			req: service.AskRequest{
				SessionID: "s1",
				Question:  "And the rotor?",
				Filters:   map[string]any{"year": 2021},
				Model:     "o3-mini",
			},
			mockSetup: func(engine *ragmocks.MockEngine, store *convmocks.MockStore) {
				store.EXPECT().Recent(gomock.Any(), "s1", rag.HistoryWindow).Return(history, nil)
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, req rag.AnswerRequest) (rag.Result, error) {
						if req.Question != "And the rotor?" || req.Model != "o3-mini" {
							t.Errorf("unexpected request %+v", req)
						}
						if len(req.History) != 1 {
							t.Errorf("expected history to be passed, got %v", req.History)
						}
						if _, ok := req.Filter.Scope.(rag.ExactYear); !ok {
							t.Errorf("expected exact year filter, got %v", req.Filter)
						}
						return rag.Answered{Text: "The rotating part.", Sources: sources, Model: "o3-mini"}, nil
					})
				store.EXPECT().Add(gomock.Any(), "s1", rag.Turn{UserQuestion: "And the rotor?", AIAnswer: "The rotating part."}).Return(nil)
			},
			wantAnswer: "The rotating part.",
			wantSource: "a.pdf | b.pdf",
		},
		{
			name: "no answer leaves history untouched",
			req:  service.AskRequest{SessionID: "s1", Question: "Unknown?"},
			mockSetup: func(engine *ragmocks.MockEngine, store *convmocks.MockStore) {
				store.EXPECT().Recent(gomock.Any(), "s1", rag.HistoryWindow).Return(nil, nil)
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).
					Return(rag.NoAnswer{Reason: rag.ReasonNoEvidence, Model: "4o"}, nil)
			},
			wantAnswer:  rag.NoResponse,
			wantSource:  rag.NoSourceDetails,
			wantAbstain: true,
		},
		{
			name: "history write failure still answers",
			req:  service.AskRequest{SessionID: "s1", Question: "Q?"},
			mockSetup: func(engine *ragmocks.MockEngine, store *convmocks.MockStore) {
				store.EXPECT().Recent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).Return(rag.Answered{Text: "A."}, nil)
				store.EXPECT().Add(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantAnswer: "A.",
			wantSource: rag.NoSourceDetails,
		},
		{
			name:      "empty question",
			req:       service.AskRequest{SessionID: "s1", Question: ""},
			mockSetup: func(*ragmocks.MockEngine, *convmocks.MockStore) {},
			wantErr:   true,
			checkErr: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "question"
			},
		},
		{
			name:      "blank question",
			req:       service.AskRequest{SessionID: "s1", Question: "   "},
			mockSetup: func(*ragmocks.MockEngine, *convmocks.MockStore) {},
			wantErr:   true,
			checkErr: func(err error) bool {
				return errors.Is(err, service.ErrInvalidInput)
			},
		},
		{
			name:      "missing session",
			req:       service.AskRequest{Question: "Q?"},
			mockSetup: func(*ragmocks.MockEngine, *convmocks.MockStore) {},
			wantErr:   true,
			checkErr: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "session_id"
			},
		},
		{
			name: "stage failure is external",
			req:  service.AskRequest{SessionID: "s1", Question: "Q?"},
			mockSetup: func(engine *ragmocks.MockEngine, store *convmocks.MockStore) {
				store.EXPECT().Recent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				engine.EXPECT().Answer(gomock.Any(), gomock.Any()).
					Return(nil, &rag.StageError{Stage: rag.StageSynthesize, Err: errors.New("503")})
			},
			wantErr: true,
			checkErr: func(err error) bool {
				var stageErr *rag.StageError
				return errors.Is(err, service.ErrExternalService) && errors.As(err, &stageErr)
			},
		},
		{
			name: "history read failure",
			req:  service.AskRequest{SessionID: "s1", Question: "Q?"},
			mockSetup: func(engine *ragmocks.MockEngine, store *convmocks.MockStore) {
				store.EXPECT().Recent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("locked"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			engine := ragmocks.NewMockEngine(ctrl)
			store := convmocks.NewMockStore(ctrl)
			tt.mockSetup(engine, store)

			svc := service.NewQueryService(engine, store)
			resp, err := svc.Ask(testContext(), tt.req)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Ask() expected error, got nil")
				}
				if tt.checkErr != nil && !tt.checkErr(err) {
					t.Errorf("Ask() error type mismatch: %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Ask() unexpected error: %v", err)
			}
			if resp.Answer != tt.wantAnswer {
				t.Errorf("Answer = %q, want %q", resp.Answer, tt.wantAnswer)
			}
			if resp.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", resp.Source, tt.wantSource)
			}
			if resp.Abstained != tt.wantAbstain {
				t.Errorf("Abstained = %v, want %v", resp.Abstained, tt.wantAbstain)
			}
			if resp.SessionID != tt.req.SessionID {
				t.Errorf("SessionID = %q, want %q", resp.SessionID, tt.req.SessionID)
			}
		})
	}
}

func TestQueryService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	svc := service.NewQueryService(ragmocks.NewMockEngine(ctrl), store)

	want := []rag.Turn{{UserQuestion: "q", AIAnswer: "a"}}
	store.EXPECT().Get(gomock.Any(), "s1").Return(want, nil)

	got, err := svc.History(testContext(), "s1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("History() = %v, want %v", got, want)
	}

	if _, err := svc.History(testContext(), ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("History(\"\") error = %v, want invalid input", err)
	}
}

func TestQueryService_Reset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := convmocks.NewMockStore(ctrl)
	svc := service.NewQueryService(ragmocks.NewMockEngine(ctrl), store)

	store.EXPECT().Reset(gomock.Any(), "s1").Return(nil)
	if err := svc.Reset(testContext(), "s1"); err != nil {
		t.Errorf("Reset() error = %v", err)
	}

	store.EXPECT().Reset(gomock.Any(), "s2").Return(errors.New("locked"))
	if err := svc.Reset(testContext(), "s2"); err == nil {
		t.Error("Reset() expected error")
	}

	if err := svc.Reset(testContext(), " "); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Reset(\" \") error = %v, want invalid input", err)
	}
}
