package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

func TestNew_MissingCredential(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, models.ErrMissingCredential)
}
