// Package langdetect identifies the language of questions and answers.
package langdetect

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector detects the language of a text among a fixed set of candidate languages.
type Detector struct {
	detector lingua.LanguageDetector
}

// New creates a detector restricted to the given ISO 639-1 codes (e.g. "en", "de").
// At least two distinct languages are required.
func New(codes []string) (*Detector, error) {
	languages := make([]lingua.Language, 0, len(codes))
	seen := make(map[lingua.Language]bool, len(codes))
	for _, code := range codes {
		lang, err := languageFromCode(code)
		if err != nil {
			return nil, err
		}
		if !seen[lang] {
			seen[lang] = true
			languages = append(languages, lang)
		}
	}
	if len(languages) < 2 {
		return nil, fmt.Errorf("at least two languages are required, got %d", len(languages))
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(languages...).Build(),
	}, nil
}

func languageFromCode(code string) (lingua.Language, error) {
	code = strings.TrimSpace(code)
	for _, lang := range lingua.AllLanguages() {
		if strings.EqualFold(lang.IsoCode639_1().String(), code) {
			return lang, nil
		}
	}
	return lingua.Unknown, fmt.Errorf("unsupported language code %q", code)
}

// Detect returns the lowercase ISO 639-1 code of text's language, or "" when it cannot be
// determined. Markdown formatting is stripped before detection.
func (d *Detector) Detect(text string) string {
	plain := PlainText(text)
	if strings.TrimSpace(plain) == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(plain)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
