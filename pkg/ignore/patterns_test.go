package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore(t *testing.T) {
	m := NewMatcher([]string{"build/**", "*.egg-info/**", "site-packages/**"})

	tests := []struct {
		path string
		want bool
	}{
		{"app/main.py", false},
		{"auth.py", false},
		{".git/hooks/pre-commit.py", true},
		{"pkg/__pycache__/mod.py", true},
		{".venv/lib/x.py", true},
		{"venv/lib/x.py", true},
		{"build/lib/app.py", true},
		{"src/build/gen.py", true},
		{"mypkg.egg-info/setup.py", true},
		{"lib/site-packages/requests/api.py", true},
		{"venvtools/run.py", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ShouldIgnore(tt.path))
		})
	}
}

func TestFilePatterns(t *testing.T) {
	m := NewMatcher([]string{"*_pb2.py", "**/migrations/**"})

	assert.True(t, m.ShouldIgnore("api/service_pb2.py"))
	assert.True(t, m.ShouldIgnore("app/migrations/0001_initial.py"))
	assert.False(t, m.ShouldIgnore("app/models.py"))
}

func TestIsExcludedDir(t *testing.T) {
	m := NewMatcher(nil)

	for _, name := range ExcludedDirs {
		assert.True(t, m.IsExcludedDir(name), name)
	}
	assert.False(t, m.IsExcludedDir("src"))
}
