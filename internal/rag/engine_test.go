package rag_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	llmmocks "research-chatbot/internal/llm/mocks"
	"research-chatbot/internal/rag"
	ragmocks "research-chatbot/internal/rag/mocks"
	"research-chatbot/internal/vectorstore"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// promptKind identifies a pipeline prompt by the variables it is rendered with.
func promptKind(vars map[string]string) string {
	switch {
	case vars["chat_history"] != "":
		return "rephrase"
	case vars["language"] != "":
		return "translate"
	case vars["context"] != "":
		return "answer"
	case vars["response"] != "":
		return "check"
	default:
		return "multi_query"
	}
}

// scriptedGenerator answers every prompt kind from replies and counts the calls per kind.
type scriptedGenerator struct {
	*llmmocks.MockGenerator
	mu     sync.Mutex
	counts map[string]int
}

func newScriptedGenerator(ctrl *gomock.Controller, reply func(kind string, vars map[string]string) (string, error)) *scriptedGenerator {
	g := &scriptedGenerator{MockGenerator: llmmocks.NewMockGenerator(ctrl), counts: make(map[string]int)}
	g.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, vars map[string]string) (string, error) {
			kind := promptKind(vars)
			g.mu.Lock()
			g.counts[kind]++
			g.mu.Unlock()
			return reply(kind, vars)
		}).AnyTimes()
	return g
}

func (g *scriptedGenerator) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counts[kind]
}

func defaultReplies(kind string, vars map[string]string) (string, error) {
	switch kind {
	case "translate":
		return "Wie werden Hairpins geschweißt?", nil
	case "multi_query":
		return "Which welding process joins hairpins?", nil
	case "answer":
		return "Hairpins are joined by laser welding.", nil
	case "check":
		return "True", nil
	}
	return "", nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
}

type engineFixture struct {
	store    *ragmocks.MockEvidenceStore
	embedder *ragmocks.MockEmbedder
	detector *ragmocks.MockLanguageDetector
	models   *ragmocks.MockModelResolver
	engine   rag.Engine
}

func newEngineFixture(t *testing.T, gen *scriptedGenerator, ctrl *gomock.Controller, opts ...rag.Option) *engineFixture {
	t.Helper()
	f := &engineFixture{
		store:    ragmocks.NewMockEvidenceStore(ctrl),
		embedder: ragmocks.NewMockEmbedder(ctrl),
		detector: ragmocks.NewMockLanguageDetector(ctrl),
		models:   ragmocks.NewMockModelResolver(ctrl),
	}
	f.models.EXPECT().Resolve(gomock.Any()).Return(gen, "4o").AnyTimes()
	opts = append([]rag.Option{rag.WithClock(fixedNow)}, opts...)
	f.engine = rag.NewEngine(f.store, f.embedder, f.detector, f.models, opts...)
	return f
}

func TestEngine_Answer(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := newScriptedGenerator(ctrl, defaultReplies)
	f := newEngineFixture(t, gen, ctrl, rag.WithSequentialRetrieval())

	f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()

	laser := rag.Candidate{Content: "Laser welding joins hairpin ends.", Source: `D:\papers\laser.pdf`}
	tig := rag.Candidate{Content: "TIG welding is an alternative.", Source: "papers/tig.pdf"}
	unrelated := rag.Candidate{Content: "Magnet grades.", Source: "papers/magnets.pdf"}

	var searched []string
	f.store.EXPECT().Search(gomock.Any(), gomock.Any(), 1, gomock.Nil()).DoAndReturn(
		func(_ context.Context, query string, _ int, _ *vectorstore.YearRange) ([]rag.Candidate, error) {
			searched = append(searched, query)
			switch query {
			case "How are hairpins welded?":
				return []rag.Candidate{laser}, nil
			case "Wie werden Hairpins geschweißt?":
				return []rag.Candidate{laser, tig}, nil
			default:
				return []rag.Candidate{unrelated}, nil
			}
		}).Times(3)

	answer := "Hairpins are joined by laser welding."
	f.embedder.EXPECT().Embed(gomock.Any(), answer).Return([]float32{1, 0}, nil)
	f.embedder.EXPECT().EmbedBatch(gomock.Any(), []string{laser.Content, tig.Content, unrelated.Content}).
		Return([][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}, nil)

	result, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "How are hairpins welded?"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	answered, ok := result.(rag.Answered)
	if !ok {
		t.Fatalf("expected Answered, got %#v", result)
	}
	if answered.Text != answer {
		t.Errorf("Text = %q, want %q", answered.Text, answer)
	}
	if answered.Model != "4o" {
		t.Errorf("Model = %q, want 4o", answered.Model)
	}

	wantSources := []string{`D:\papers\laser.pdf`, "papers/tig.pdf"}
	var gotSources []string
	for _, s := range answered.Sources {
		gotSources = append(gotSources, s.Source)
	}
	if !reflect.DeepEqual(gotSources, wantSources) {
		t.Errorf("Sources = %v, want %v", gotSources, wantSources)
	}
	if got := rag.FormatSources(answered.Sources); got != "laser.pdf | tig.pdf" {
		t.Errorf("FormatSources() = %q", got)
	}

	wantSearched := []string{"How are hairpins welded?", "Wie werden Hairpins geschweißt?", "Which welding process joins hairpins?"}
	if !reflect.DeepEqual(searched, wantSearched) {
		t.Errorf("searched = %q, want %q", searched, wantSearched)
	}
	if gen.count("rephrase") != 0 {
		t.Error("rephrase should not run without history")
	}
	if gen.count("check") != 1 {
		t.Errorf("check ran %d times, want 1", gen.count("check"))
	}
}

func TestEngine_Answer_NoEvidence(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := newScriptedGenerator(ctrl, defaultReplies)
	f := newEngineFixture(t, gen, ctrl)

	f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()
	f.store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	result, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "Unknown topic?"})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	want := rag.NoAnswer{Reason: rag.ReasonNoEvidence, Model: "4o"}
	if result != want {
		t.Errorf("Answer() = %#v, want %#v", result, want)
	}
	if gen.count("answer") != 0 || gen.count("check") != 0 {
		t.Errorf("synthesis ran on empty evidence: answer=%d check=%d", gen.count("answer"), gen.count("check"))
	}
}

func TestEngine_Answer_NotAnswered(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantCheck int
	}{
		{name: "validator rejects", answer: "Something unrelated.", wantCheck: 1},
		{name: "model returns sentinel", answer: "No-Response.", wantCheck: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gen := newScriptedGenerator(ctrl, func(kind string, vars map[string]string) (string, error) {
				switch kind {
				case "answer":
					return tt.answer, nil
				case "check":
					return "False", nil
				}
				return defaultReplies(kind, vars)
			})
			f := newEngineFixture(t, gen, ctrl)

			f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()
			f.store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]rag.Candidate{{Content: "passage", Source: "a.pdf"}}, nil).AnyTimes()

			result, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "Question?"})
			if err != nil {
				t.Fatalf("Answer() error = %v", err)
			}

			want := rag.NoAnswer{Reason: rag.ReasonNotAnswered, Model: "4o"}
			if result != want {
				t.Errorf("Answer() = %#v, want %#v", result, want)
			}
			if gen.count("check") != tt.wantCheck {
				t.Errorf("check ran %d times, want %d", gen.count("check"), tt.wantCheck)
			}
		})
	}
}

func TestEngine_Answer_CrossLingual(t *testing.T) {
	const (
		question      = "Wie werden Hairpins geschweißt?"
		englishAnswer = "Hairpins are joined by laser welding."
		germanAnswer  = "Hairpins werden durch Laserschweißen verbunden."
	)

	ctrl := gomock.NewController(t)
	gen := newScriptedGenerator(ctrl, func(kind string, vars map[string]string) (string, error) {
		switch kind {
		case "translate":
			if vars["text"] == englishAnswer {
				if vars["language"] != "German" {
					t.Errorf("answer translated into %q, want German", vars["language"])
				}
				return germanAnswer, nil
			}
			return "How are hairpins welded?", nil
		case "multi_query":
			return "Which process joins hairpins?", nil
		case "answer":
			return englishAnswer, nil
		case "check":
			return "True", nil
		}
		return "", nil
	})
	f := newEngineFixture(t, gen, ctrl)

	f.detector.EXPECT().Detect(gomock.Any()).DoAndReturn(func(text string) string {
		if text == englishAnswer {
			return "en"
		}
		return "de"
	}).AnyTimes()
	f.store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rag.Candidate{{Content: "Laserschweißen.", Source: "a.pdf"}}, nil).AnyTimes()
	f.embedder.EXPECT().Embed(gomock.Any(), englishAnswer).Return([]float32{1}, nil)
	f.embedder.EXPECT().EmbedBatch(gomock.Any(), gomock.Any()).Return([][]float32{{1}}, nil)

	result, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: question})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	answered, ok := result.(rag.Answered)
	if !ok {
		t.Fatalf("expected Answered, got %#v", result)
	}
	if answered.Text != germanAnswer {
		t.Errorf("Text = %q, want %q", answered.Text, germanAnswer)
	}
}

func TestEngine_Answer_Filtered(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := newScriptedGenerator(ctrl, defaultReplies)
	f := newEngineFixture(t, gen, ctrl)

	f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()
	f.store.EXPECT().Search(gomock.Any(), gomock.Any(), 10, &vectorstore.YearRange{From: 2023, To: 2025}).
		Return(nil, nil).MinTimes(1)

	filter := rag.ParseFilter(context.Background(), map[string]any{"pastYears": 3})
	result, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "Recent work?", Filter: filter})
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if nr, ok := result.(rag.NoAnswer); !ok || nr.Reason != rag.ReasonNoEvidence {
		t.Errorf("Answer() = %#v, want no_evidence", result)
	}
}

func TestEngine_Answer_EmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	gen := newScriptedGenerator(ctrl, defaultReplies)
	f := newEngineFixture(t, gen, ctrl)

	_, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "   "})
	if !errors.Is(err, rag.ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestEngine_Answer_StageErrors(t *testing.T) {
	tests := []struct {
		name      string
		failKind  string
		wantStage string
	}{
		{name: "translation", failKind: "translate", wantStage: rag.StageTranslate},
		{name: "synthesis", failKind: "answer", wantStage: rag.StageSynthesize},
		{name: "validation", failKind: "check", wantStage: rag.StageValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gen := newScriptedGenerator(ctrl, func(kind string, vars map[string]string) (string, error) {
				if kind == tt.failKind {
					return "", errors.New("upstream 500")
				}
				return defaultReplies(kind, vars)
			})
			f := newEngineFixture(t, gen, ctrl)

			f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()
			f.store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return([]rag.Candidate{{Content: "passage"}}, nil).AnyTimes()

			_, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "Question?"})
			var stageErr *rag.StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("expected StageError, got %v", err)
			}
			if stageErr.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", stageErr.Stage, tt.wantStage)
			}
		})
	}
}

func TestEngine_Answer_HistoryWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	var gotHistory string
	gen := newScriptedGenerator(ctrl, func(kind string, vars map[string]string) (string, error) {
		if kind == "rephrase" {
			gotHistory = vars["chat_history"]
			return "Rephrased question?", nil
		}
		return defaultReplies(kind, vars)
	})
	f := newEngineFixture(t, gen, ctrl)

	f.detector.EXPECT().Detect(gomock.Any()).Return("en").AnyTimes()
	f.store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	history := []rag.Turn{
		{UserQuestion: "turn one", AIAnswer: "answer one"},
		{UserQuestion: "turn two", AIAnswer: "answer two"},
		{UserQuestion: "turn three", AIAnswer: "answer three"},
	}
	if _, err := f.engine.Answer(context.Background(), rag.AnswerRequest{Question: "And then?", History: history}); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if strings.Contains(gotHistory, "turn one") {
		t.Errorf("history outside the window was sent: %q", gotHistory)
	}
	if !strings.Contains(gotHistory, "turn two") || !strings.Contains(gotHistory, "turn three") {
		t.Errorf("expected the last two turns, got %q", gotHistory)
	}
	if len(history) != 3 || history[0].UserQuestion != "turn one" {
		t.Error("caller history was modified")
	}
}
