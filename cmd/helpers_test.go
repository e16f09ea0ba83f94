package cmd

import (
	"context"
	"testing"

	coreconfig "github.com/AzielCF/az-plant/core/config"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramEnabled(t *testing.T) {
	ctx := context.Background()

	enabled, err := telegramEnabled(ctx, coreconfig.TelegramConfig{}, false)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = telegramEnabled(ctx, coreconfig.TelegramConfig{Token: "123:abc"}, false)
	require.NoError(t, err)
	assert.True(t, enabled)

	enabled, err = telegramEnabled(ctx, coreconfig.TelegramConfig{}, true)
	require.Error(t, err)
	assert.False(t, enabled)
	_, ok := err.(pkgError.ValidationError)
	assert.True(t, ok, "missing token should be a validation error, got %T", err)
}
