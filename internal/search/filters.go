package search

import (
	"strings"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// BuildFilterConditions maps file mentions to store conditions. A mention
// containing a slash matches against the relative path; a bare name
// matches against the file name. Blank mentions are ignored.
func BuildFilterConditions(filters []string) []models.FilterCondition {
	conditions := make([]models.FilterCondition, 0, len(filters))
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		field := models.FilterFieldName
		if strings.Contains(f, "/") {
			field = models.FilterFieldPath
		}
		conditions = append(conditions, models.FilterCondition{Field: field, Pattern: f})
	}
	return conditions
}
