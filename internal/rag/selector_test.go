package rag

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
)

func TestSelectSources(t *testing.T) {
	tests := []struct {
		name   string
		ranked []ScoredSource
		want   []ScoredSource
	}{
		{
			name:   "empty",
			ranked: nil,
			want:   nil,
		},
		{
			name:   "strong scores always kept",
			ranked: []ScoredSource{{"a", 0.95}, {"b", 0.81}, {"c", 0.60}},
			want:   []ScoredSource{{"a", 0.95}, {"b", 0.81}},
		},
		{
			name:   "weak top returns top only",
			ranked: []ScoredSource{{"a", 0.65}, {"b", 0.64}, {"c", 0.63}},
			want:   []ScoredSource{{"a", 0.65}},
		},
		{
			name:   "top at threshold is not weak",
			ranked: []ScoredSource{{"a", 0.70}, {"b", 0.62}},
			want:   []ScoredSource{{"a", 0.70}, {"b", 0.62}},
		},
		{
			name:   "close later sources kept",
			ranked: []ScoredSource{{"a", 0.75}, {"b", 0.72}, {"c", 0.71}, {"d", 0.60}},
			want:   []ScoredSource{{"a", 0.75}, {"b", 0.72}, {"c", 0.71}},
		},
		{
			name:   "second gets wider gap than third",
			ranked: []ScoredSource{{"a", 0.78}, {"b", 0.70}, {"c", 0.70}},
			want:   []ScoredSource{{"a", 0.78}, {"b", 0.70}},
		},
		{
			name:   "second outside gap",
			ranked: []ScoredSource{{"a", 0.78}, {"b", 0.60}},
			want:   []ScoredSource{{"a", 0.78}},
		},
		{
			name:   "duplicate sources cited once",
			ranked: []ScoredSource{{"a", 0.90}, {"a", 0.85}, {"b", 0.84}},
			want:   []ScoredSource{{"a", 0.90}, {"b", 0.84}},
		},
		{
			name:   "position counts duplicates",
			ranked: []ScoredSource{{"a", 0.75}, {"a", 0.74}, {"b", 0.67}},
			want:   []ScoredSource{{"a", 0.75}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectSources(tt.ranked)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SelectSources() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectSources_NoDuplicateSources(t *testing.T) {
	ranked := []ScoredSource{{"a", 0.99}, {"b", 0.98}, {"a", 0.97}, {"b", 0.96}, {"c", 0.95}}
	got := SelectSources(ranked)

	seen := make(map[string]bool)
	for _, s := range got {
		if seen[s.Source] {
			t.Fatalf("source %q selected twice in %v", s.Source, got)
		}
		seen[s.Source] = true
	}
	if len(got) != 3 {
		t.Errorf("expected 3 sources, got %v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{3, 3}, want: 1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 1}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelector_Rank(t *testing.T) {
	embedder := fakeEmbedder{vectors: map[string][]float32{
		"the answer": {1, 0},
		"alpha":      {0, 1},
		"beta":       {1, 0},
		"gamma":      {1, 1},
	}}
	candidates := []Candidate{
		{Content: "alpha", Source: "a.pdf"},
		{Content: "beta", Source: ""},
		{Content: "gamma", Source: "c.pdf"},
	}

	ranked, err := NewSelector(embedder).Rank(context.Background(), "the answer", candidates)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	wantOrder := []string{"Unknown", "c.pdf", "a.pdf"}
	for i, want := range wantOrder {
		if ranked[i].Source != want {
			t.Errorf("ranked[%d].Source = %q, want %q", i, ranked[i].Source, want)
		}
	}
	if math.Abs(ranked[1].Score-1/math.Sqrt2) > 1e-6 {
		t.Errorf("ranked[1].Score = %v, want %v", ranked[1].Score, 1/math.Sqrt2)
	}
}

func TestSelector_Rank_Empty(t *testing.T) {
	ranked, err := NewSelector(fakeEmbedder{}).Rank(context.Background(), "answer", nil)
	if err != nil || ranked != nil {
		t.Errorf("Rank() = %v, %v, want nil, nil", ranked, err)
	}
}

func TestSelector_Rank_EmbedError(t *testing.T) {
	embedder := fakeEmbedder{err: errors.New("embedding service down")}
	_, err := NewSelector(embedder).Rank(context.Background(), "answer", []Candidate{{Content: "x"}})

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != StageRank {
		t.Errorf("Stage = %q, want %q", stageErr.Stage, StageRank)
	}
}

func TestFormatSources(t *testing.T) {
	tests := []struct {
		name    string
		sources []ScoredSource
		want    string
	}{
		{name: "none", sources: nil, want: NoSourceDetails},
		{name: "single", sources: []ScoredSource{{Source: "papers/motor.pdf"}}, want: "motor.pdf"},
		{
			name:    "windows paths",
			sources: []ScoredSource{{Source: `C:\data\winding.pdf`}, {Source: "stator.pdf"}},
			want:    "winding.pdf | stator.pdf",
		},
		{
			name:    "at most three",
			sources: []ScoredSource{{Source: "a.pdf"}, {Source: "b.pdf"}, {Source: "c.pdf"}, {Source: "d.pdf"}},
			want:    "a.pdf | b.pdf | c.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSources(tt.sources); got != tt.want {
				t.Errorf("FormatSources() = %q, want %q", got, tt.want)
			}
		})
	}
}
