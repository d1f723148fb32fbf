package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type readerConfig struct {
	window    int
	threshold float64
}

func withWindow(n int) Option[*readerConfig] {
	return New(func(c *readerConfig) error {
		if n <= 0 {
			return errors.New("window must be positive")
		}
		c.window = n

		return nil
	})
}

func withThreshold(v float64) Option[*readerConfig] {
	return NoError(func(c *readerConfig) {
		c.threshold = v
	})
}

func TestApply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withWindow(16), withThreshold(2.5), withWindow(32))
		require.NoError(t, err)
		require.Equal(t, 32, cfg.window)
		require.InDelta(t, 2.5, cfg.threshold, 0)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &readerConfig{}
		err := Apply(cfg, withThreshold(1), withWindow(-1), withThreshold(9))
		require.EqualError(t, err, "window must be positive")
		require.InDelta(t, 1.0, cfg.threshold, 0)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &readerConfig{}
		require.NoError(t, Apply[*readerConfig](cfg, nil, withWindow(8)))
		require.Equal(t, 8, cfg.window)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &readerConfig{window: 4}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 4, cfg.window)
	})
}
