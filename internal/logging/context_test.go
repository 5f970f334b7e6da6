package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextCarriesScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithContext(context.Background(), logger)
	ctx = WithComponent(ctx, "watcher")
	ctx = WithTarget(ctx, "input-1")

	FromContext(ctx).Info().Msg("trigger fired")

	out := buf.String()
	assert.Contains(t, out, `"component":"watcher"`)
	assert.Contains(t, out, `"target":"input-1"`)
	assert.Contains(t, out, "trigger fired")
}

func TestFromContextWithoutLoggerIsDisabled(t *testing.T) {
	logger := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}
