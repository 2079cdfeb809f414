package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/pkg/observability"
)

func TestNewLogger(t *testing.T) {
	t.Run("json format includes service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := observability.NewLogger(observability.LogConfig{
			Level:          observability.LogLevelInfo,
			Format:         observability.LogFormatJSON,
			Output:         &buf,
			ServiceName:    "gala",
			ServiceVersion: "test",
		})

		logger.Info("hello", "key", "value")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "gala", entry["service"])
		assert.Equal(t, "test", entry["version"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := observability.NewLogger(observability.LogConfig{
			Level:  observability.LogLevelWarn,
			Format: observability.LogFormatText,
			Output: &buf,
		})

		logger.Info("quiet")
		assert.Empty(t, buf.String())

		logger.Warn("loud")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("correlation id flows from context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := observability.NewLogger(observability.LogConfig{
			Level:  observability.LogLevelInfo,
			Format: observability.LogFormatJSON,
			Output: &buf,
		})

		ctx := observability.WithCorrelationID(context.Background(), "corr-42")
		logger.InfoContext(ctx, "traced")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "corr-42", entry[observability.CorrelationIDKey])
	})

	t.Run("empty correlation id generates one", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "")
		assert.NotEmpty(t, observability.CorrelationIDFromContext(ctx))
	})
}
