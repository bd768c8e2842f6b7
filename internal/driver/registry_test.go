package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultsToNull(t *testing.T) {
	d, err := Build(Config{})
	require.NoError(t, err)
	_, ok := d.(*NullDriver)
	assert.True(t, ok)
}

func TestBuildUnknownBrand(t *testing.T) {
	_, err := Build(Config{"type": "nonexistent"})
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestBuildAmcrestRequiresFields(t *testing.T) {
	_, err := Build(Config{"type": "amcrest"})
	assert.Error(t, err)
}

func TestBuildAmcrest(t *testing.T) {
	d, err := Build(Config{"type": "amcrest", "ip": "10.0.0.5", "user": "admin", "pass": "secret"})
	require.NoError(t, err)
	_, ok := d.(*AmcrestDriver)
	assert.True(t, ok)
}
