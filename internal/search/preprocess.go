package search

import (
	"regexp"
	"strings"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// FileMentionPattern matches Python file references such as "auth.py" or
// "agent/core/db.py" inside free text
var FileMentionPattern = regexp.MustCompile(`[\p{L}\p{N}_./-]+\.py\b`)

// noisePhrases are removed from queries in this order, as plain substrings
var noisePhrases = []string{
	"please",
	"could you",
	"would you",
	"can you",
	"tell me",
	"explain",
}

var whitespace = regexp.MustCompile(`\s+`)

// Preprocess normalizes a raw query and extracts file filters from it.
// Filters are taken from the original text so their casing is preserved.
func Preprocess(raw string) models.Query {
	cleaned := strings.TrimSpace(strings.ToLower(raw))
	for _, phrase := range noisePhrases {
		cleaned = strings.ReplaceAll(cleaned, phrase, "")
	}
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))

	return models.Query{
		Original:    raw,
		Cleaned:     cleaned,
		FileFilters: ExtractFileMentions(raw),
	}
}

// ExtractFileMentions returns the distinct file references in text, in
// first-seen order
func ExtractFileMentions(text string) []string {
	matches := FileMentionPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
