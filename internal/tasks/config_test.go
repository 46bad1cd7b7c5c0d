package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaults(t *testing.T) {
	t.Run("zero config gets every default", func(t *testing.T) {
		cfg := Config{}.withDefaults()

		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, time.Minute, cfg.RetryDelay)
		assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
		assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
		assert.Equal(t, time.Hour, cfg.CleanupInterval)
		assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
	})

	t.Run("set fields survive", func(t *testing.T) {
		cfg := Config{Workers: 8, RetryDelay: 10 * time.Second}.withDefaults()

		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, 10*time.Second, cfg.RetryDelay)
		assert.Equal(t, 3, cfg.MaxRetries)
	})

	t.Run("negative values are treated as unset", func(t *testing.T) {
		cfg := Config{Workers: -1}.withDefaults()
		assert.Equal(t, 2, cfg.Workers)
	})
}
