package rag

import (
	"context"
	"sync"

	"research-chatbot/internal/vectorstore"
)

// fakeGenerator answers each prompt template with a scripted function and records the calls.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []string
	reply func(tmpl string, vars map[string]string) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, tmpl string, vars map[string]string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, tmpl)
	g.mu.Unlock()
	return g.reply(tmpl, vars)
}

func (g *fakeGenerator) count(tmpl string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == tmpl {
			n++
		}
	}
	return n
}

// fakeDetector maps exact texts to language codes, falling back to def.
type fakeDetector struct {
	langs map[string]string
	def   string
}

func (d fakeDetector) Detect(text string) string {
	if lang, ok := d.langs[text]; ok {
		return lang
	}
	return d.def
}

// fakeEmbedder returns the configured vector for each text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (e fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

func (e fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type searchCall struct {
	query string
	k     int
	years *vectorstore.YearRange
}

// fakeStore returns scripted results per query and records every search.
type fakeStore struct {
	mu      sync.Mutex
	calls   []searchCall
	results map[string][]Candidate
	err     error
}

func (s *fakeStore) Search(_ context.Context, query string, k int, years *vectorstore.YearRange) ([]Candidate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, searchCall{query: query, k: k, years: years})
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
