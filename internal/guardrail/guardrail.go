// Package guardrail keeps the assistant scoped to questions about the
// ingested codebase.
package guardrail

import (
	"strings"

	"github.com/jamaly87/codebase-qa/internal/search"
)

// blockedTerms mark requests for generation or off-topic content
var blockedTerms = []string{
	"write",
	"create",
	"generate",
	"build",
	"implement",
	"draft",
	"modify",
	"stack overflow",
	"essay",
	"weather",
}

// codeTerms mark a question as being about the codebase
var codeTerms = []string{
	"code",
	"module",
	"function",
	"class",
	"endpoint",
	"api",
	"project",
	"repository",
	"file",
	"auth",
	"authentication",
	"authorization",
	"database",
	"service",
	"handler",
	"router",
}

// Decision is the outcome of classifying one query.
// Reason carries the user-facing message when the query is rejected.
type Decision struct {
	Accepted bool
	Reason   string
}

// Classifier decides whether a query is in scope
type Classifier struct {
	message string
}

// NewClassifier creates a classifier that rejects with message
func NewClassifier(message string) *Classifier {
	return &Classifier{message: message}
}

// Classify applies the policy in order: empty queries and blocked terms are
// rejected, then the query must mention a Python file or a code term.
// Terms match as case-insensitive substrings.
func (c *Classifier) Classify(query string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(query))
	if normalized == "" {
		return c.reject()
	}

	if containsAny(normalized, blockedTerms) {
		return c.reject()
	}

	mentionsFile := search.FileMentionPattern.MatchString(query)
	if !mentionsFile && !containsAny(normalized, codeTerms) {
		return c.reject()
	}

	return Decision{Accepted: true}
}

func (c *Classifier) reject() Decision {
	return Decision{Accepted: false, Reason: c.message}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
