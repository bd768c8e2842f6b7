package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatform(t *testing.T) {
	assert.Equal(t, "s5l", Platform("UVC_G4_DOME"))
	assert.Equal(t, "", Platform("NOT_A_MODEL"))
}

func TestSysID(t *testing.T) {
	id, ok := SysID("UVC_G4_DOME")
	assert.True(t, ok)
	assert.Equal(t, uint16(0xa573), id)

	_, ok = SysID("NOT_A_MODEL")
	assert.False(t, ok)
}

func TestModelBySysID(t *testing.T) {
	assert.Equal(t, "UVC_G4_DOME", ModelBySysID(0xa573))
	assert.Equal(t, "", ModelBySysID(0xffff))
}

func TestIsEndOfLife(t *testing.T) {
	assert.True(t, IsEndOfLife("UVC"))
	assert.False(t, IsEndOfLife("UVC_G4_DOME"))
}
