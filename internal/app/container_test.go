package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gala/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gala/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DatabasePath: filepath.Join(t.TempDir(), "gala.db"),
	}
	return cfg
}

func TestNew_LocalMode(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.PlanEvent)
	assert.NotNil(t, c.GetPlan)
	assert.NotNil(t, c.ListPlans)
	assert.NotNil(t, c.ListConflicts)
	assert.NotNil(t, c.Repository())

	// Without a broker URL events stay on the in-process bus, so local
	// consumers can still register and receive them.
	bus, ok := c.publisher.(*eventbus.InProcessEventBus)
	require.True(t, ok, "expected in-process event bus without a broker")
	assert.Equal(t, 0, bus.Registry().ConsumerCount())
}

func TestContainer_Close(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
