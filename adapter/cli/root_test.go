package cli

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerboseFlagRaisesLogLevel(t *testing.T) {
	origLogger, origVerbose := logger, verbose
	t.Cleanup(func() {
		logger, verbose = origLogger, origVerbose
	})

	ctx := context.Background()
	rootCmd.SetContext(ctx)

	verbose = false
	logger = nil
	rootCmd.PersistentPreRun(rootCmd, nil)
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug),
		"default logger should stay at info level")

	verbose = true
	logger = nil
	rootCmd.PersistentPreRun(rootCmd, nil)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
}
