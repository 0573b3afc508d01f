package rag

import (
	"path"
	"strings"
)

// NoSourceDetails is reported when there are no sources to cite.
const NoSourceDetails = "No source details available."

// maxCitedSources is the number of sources included in the formatted citation.
const maxCitedSources = 3

// FormatSources renders up to three sources as base file names joined with " | ".
// Windows separators are normalized before taking the base name.
func FormatSources(sources []ScoredSource) string {
	if len(sources) == 0 {
		return NoSourceDetails
	}
	if len(sources) > maxCitedSources {
		sources = sources[:maxCitedSources]
	}

	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = path.Base(strings.ReplaceAll(s.Source, `\`, "/"))
	}
	return strings.Join(names, " | ")
}
