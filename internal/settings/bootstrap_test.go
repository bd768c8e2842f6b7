package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSemver(t *testing.T) {
	assert.Equal(t, [3]int{5, 1, 34}, parseSemver("5.1.34"))
	assert.Equal(t, [3]int{1, 2, 0}, parseSemver("1.2"))
	assert.Equal(t, [3]int{0, 0, 0}, parseSemver("bogus"))
}

func TestCompareRelease(t *testing.T) {
	older := firmwareRelease{Version: "4.68.1", LastActivityAt: "2024-01-01"}
	newer := firmwareRelease{Version: "5.1.34", LastActivityAt: "2025-01-01"}
	assert.True(t, compareRelease(newer, older) > 0)
	assert.True(t, compareRelease(older, newer) < 0)
	assert.Equal(t, 0, compareRelease(older, older))
}

func TestFilterReleases(t *testing.T) {
	items := []firmwareRelease{
		{Title: "UniFi Protect Cameras 5.1.34"},
		{Title: "UniFi Protect Controller 4.0.0"},
	}
	cams := filterReleases(items, func(r firmwareRelease) bool {
		return r.Title == "UniFi Protect Cameras 5.1.34"
	})
	assert.Len(t, cams, 1)
}
