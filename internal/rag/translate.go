package rag

import (
	"context"
	"strings"

	"research-chatbot/internal/llm"
)

var languageNames = map[string]string{
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
}

// LanguageName returns the English name of an ISO 639-1 code, or the code itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// counterpartLanguage is the second retrieval language: English questions are also searched in
// German, everything else in English.
func counterpartLanguage(code string) string {
	if code == "en" {
		return "de"
	}
	return "en"
}

// translate renders the domain translation prompt for text into the target language.
func translate(ctx context.Context, gen llm.Generator, text, target string) (string, error) {
	return gen.Generate(ctx, translatePrompt, map[string]string{
		"language": LanguageName(target),
		"text":     text,
	})
}
