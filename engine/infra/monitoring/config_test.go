package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("Should return config with default values", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NotNil(t, cfg)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, "/metrics", cfg.Path)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("Should accept the default path", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})
	t.Run("Should accept a custom path", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/internal/metrics"}
		assert.NoError(t, cfg.Validate())
	})
	t.Run("Should reject an empty path", func(t *testing.T) {
		cfg := &Config{Path: ""}
		assert.ErrorContains(t, cfg.Validate(), "cannot be empty")
	})
	t.Run("Should reject a path without leading slash", func(t *testing.T) {
		cfg := &Config{Path: "metrics"}
		assert.ErrorContains(t, cfg.Validate(), "must start with '/'")
	})
	t.Run("Should reject a path under the API prefix", func(t *testing.T) {
		cfg := &Config{Path: "/api/metrics"}
		assert.ErrorContains(t, cfg.Validate(), "cannot be under /api/")
	})
	t.Run("Should reject query parameters", func(t *testing.T) {
		cfg := &Config{Path: "/metrics?format=json"}
		assert.ErrorContains(t, cfg.Validate(), "query parameters")
	})
}
