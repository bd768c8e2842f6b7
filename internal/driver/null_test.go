package driver

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDriverSnapshotIsValidJPEG(t *testing.T) {
	d := &NullDriver{name: "TestCam"}
	b, err := d.GetSnapshotJPEG(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, b)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, nullFrameWidth, cfg.Width)
	assert.Equal(t, nullFrameHeight, cfg.Height)
}

func TestNullDriverSystemStats(t *testing.T) {
	d := &NullDriver{name: "TestCam"}
	stats, err := d.GetSystemStats(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.CPU, 0.0)
	assert.GreaterOrEqual(t, stats.Memory, 0.0)
	assert.Greater(t, stats.Temperature, 0.0)
}

func TestHostSystemStatsFallsBackToDefaults(t *testing.T) {
	stats := hostSystemStats(context.Background())
	assert.GreaterOrEqual(t, stats.CPU, 0.0)
	assert.GreaterOrEqual(t, stats.Memory, 0.0)
	assert.Greater(t, stats.Temperature, 0.0)
}
