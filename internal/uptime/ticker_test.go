package uptime

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
)

func newTestStore(t *testing.T) *settings.Store {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), logx.New("uptime-test", logx.LevelError))
	require.NoError(t, err)
	return store
}

func TestTickNoOpsWithoutUpSince(t *testing.T) {
	store := newTestStore(t)
	tick(store, logx.New("uptime-test", logx.LevelError))
	assert.False(t, store.Contains("uptime"))
}

func TestTickComputesUptimeFromUpSince(t *testing.T) {
	store := newTestStore(t)
	upSince := time.Now().Add(-10 * time.Second).UnixMilli()
	require.NoError(t, store.Set("upSince", upSince))

	tick(store, logx.New("uptime-test", logx.LevelError))

	got := store.GetInt("uptime", -1)
	assert.GreaterOrEqual(t, got, 9)
	assert.LessOrEqual(t, got, 11)
}
