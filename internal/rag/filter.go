package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/vectorstore"
)

// Filter restricts retrieval by publication year. Implementations are ExactYear, YearSpan and PastYears.
type Filter interface {
	yearRange(now time.Time) vectorstore.YearRange
}

// ExactYear selects documents published in Year.
type ExactYear struct {
	Year int
}

// YearSpan selects documents published between StartYear and EndYear, inclusive.
type YearSpan struct {
	StartYear int
	EndYear   int
}

// PastYears selects documents published in the last Years years, the current year included.
type PastYears struct {
	Years int
}

func (f ExactYear) yearRange(time.Time) vectorstore.YearRange {
	return vectorstore.YearRange{From: f.Year, To: f.Year}
}

func (f YearSpan) yearRange(time.Time) vectorstore.YearRange {
	return vectorstore.YearRange{From: f.StartYear, To: f.EndYear}
}

func (f PastYears) yearRange(now time.Time) vectorstore.YearRange {
	current := now.Year()
	return vectorstore.YearRange{From: current - f.Years + 1, To: current}
}

// FilterSpec is a parsed request filter: an optional year scope and an optional recency weight.
type FilterSpec struct {
	Scope Filter
	// Alpha blends similarity (1) against recency (0) when set.
	Alpha *float64
}

// Active reports whether the request asked for filtered retrieval.
func (f FilterSpec) Active() bool {
	return f.Scope != nil || f.Alpha != nil
}

// Resolve converts the scope into an inclusive year range. Nil means no year restriction.
func (f FilterSpec) Resolve(now time.Time) *vectorstore.YearRange {
	if f.Scope == nil {
		return nil
	}
	r := f.Scope.yearRange(now)
	return &r
}

// ParseFilter reads the request filter object. Recognized keys are year, yearRange
// {startYear, endYear}, pastYears and alpha; the first present of year, yearRange and pastYears
// decides the scope. Malformed values are dropped with a warning, never failing the request.
func ParseFilter(ctx context.Context, raw map[string]any) FilterSpec {
	logger := contextutil.LoggerFromContext(ctx)
	var spec FilterSpec
	if len(raw) == 0 {
		return spec
	}

	switch {
	case raw["year"] != nil:
		if year, ok := toInt(raw["year"]); ok {
			spec.Scope = ExactYear{Year: year}
		} else {
			logger.WarnContext(ctx, "ignoring malformed year filter", "value", raw["year"])
		}

	case raw["yearRange"] != nil:
		if span, ok := parseYearSpan(raw["yearRange"]); ok {
			spec.Scope = span
		} else {
			logger.WarnContext(ctx, "ignoring malformed yearRange filter", "value", raw["yearRange"])
		}

	case raw["pastYears"] != nil:
		if n, ok := toInt(raw["pastYears"]); ok && n > 0 {
			spec.Scope = PastYears{Years: n}
		} else {
			logger.WarnContext(ctx, "ignoring malformed pastYears filter", "value", raw["pastYears"])
		}
	}

	if v, present := raw["alpha"]; present && v != nil {
		if alpha, ok := toFloat(v); ok && alpha >= 0 && alpha <= 1 {
			spec.Alpha = &alpha
		} else {
			logger.WarnContext(ctx, "ignoring alpha outside [0,1]", "value", v)
		}
	}

	return spec
}

func parseYearSpan(v any) (YearSpan, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return YearSpan{}, false
	}
	start, okStart := toInt(m["startYear"])
	end, okEnd := toInt(m["endYear"])
	if !okStart || !okEnd || start > end {
		return YearSpan{}, false
	}
	return YearSpan{StartYear: start, EndYear: end}, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// String renders the spec for logs.
func (f FilterSpec) String() string {
	var parts []string
	switch s := f.Scope.(type) {
	case ExactYear:
		parts = append(parts, fmt.Sprintf("year=%d", s.Year))
	case YearSpan:
		parts = append(parts, fmt.Sprintf("years=%d..%d", s.StartYear, s.EndYear))
	case PastYears:
		parts = append(parts, fmt.Sprintf("pastYears=%d", s.Years))
	}
	if f.Alpha != nil {
		parts = append(parts, fmt.Sprintf("alpha=%g", *f.Alpha))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
