package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const rejection = "out of scope"

func TestClassify(t *testing.T) {
	c := NewClassifier(rejection)

	tests := []struct {
		query    string
		accepted bool
	}{
		{"", false},
		{"   \n", false},
		{"write me an essay", false},
		{"What's the weather like?", false},
		{"Please create a new endpoint for users", false},
		{"how do I bake bread", false},
		{"explain the auth module in auth.py", true},
		{"What does loader.py return?", true},
		{"Which FUNCTION opens the database connection?", true},
		{"where is the router defined", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			d := c.Classify(tt.query)
			assert.Equal(t, tt.accepted, d.Accepted)
			if tt.accepted {
				assert.Empty(t, d.Reason)
			} else {
				assert.Equal(t, rejection, d.Reason)
			}
		})
	}
}

func TestClassify_BlocklistWinsOverFileMention(t *testing.T) {
	d := NewClassifier(rejection).Classify("modify utils.py to add caching")
	assert.False(t, d.Accepted)
}
