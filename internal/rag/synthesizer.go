package rag

import (
	"context"
	"regexp"
	"strings"

	"research-chatbot/internal/contextutil"
	"research-chatbot/internal/llm"
)

var sentinelPattern = regexp.MustCompile(`(?i)^no-response\.?$`)

// IsSentinel reports whether s is the reserved no-answer marker, ignoring case, surrounding
// whitespace and one trailing period.
func IsSentinel(s string) bool {
	return sentinelPattern.MatchString(strings.TrimSpace(s))
}

// Synthesizer writes an answer from the candidates, checks that it addresses the question,
// and translates it back into the asker's language.
type Synthesizer struct {
	detector LanguageDetector
}

// NewSynthesizer creates a new synthesizer.
func NewSynthesizer(detector LanguageDetector) *Synthesizer {
	return &Synthesizer{detector: detector}
}

// Synthesize answers question using only the candidates' content.
func (s *Synthesizer) Synthesize(ctx context.Context, gen llm.Generator, question string, candidates []Candidate) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	evidence := formatContext(candidates)
	logger.DebugContext(ctx, "synthesizing answer", "candidates", len(candidates), "context_length", len(evidence))

	answer, err := gen.Generate(ctx, answerPrompt, map[string]string{
		"context":  evidence,
		"question": question,
	})
	if err != nil {
		return "", stageError(StageSynthesize, err)
	}

	logger.InfoContext(ctx, "answer synthesized", "answer_length", len(answer))
	return answer, nil
}

// Validate asks the model whether answer addresses question. A reply containing "False" rejects it.
func (s *Synthesizer) Validate(ctx context.Context, gen llm.Generator, question, answer string) (bool, error) {
	if IsSentinel(answer) {
		return false, nil
	}

	verdict, err := gen.Generate(ctx, checkPrompt, map[string]string{
		"question": question,
		"response": answer,
	})
	if err != nil {
		return false, stageError(StageValidate, err)
	}

	answered := !strings.Contains(verdict, "False")
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "answer validated", "answered", answered)
	return answered, nil
}

// Repair translates answer into the language of question when the two differ.
// Unknown languages and the sentinel are returned unchanged.
func (s *Synthesizer) Repair(ctx context.Context, gen llm.Generator, question, answer string) (string, error) {
	if IsSentinel(answer) {
		return answer, nil
	}

	questionLang := s.detector.Detect(question)
	answerLang := s.detector.Detect(answer)
	if questionLang == "" || answerLang == "" || questionLang == answerLang {
		return answer, nil
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "translating answer",
		"from", answerLang,
		"to", questionLang,
	)
	translated, err := translate(ctx, gen, answer, questionLang)
	if err != nil {
		return "", stageError(StageRepair, err)
	}
	return translated, nil
}
