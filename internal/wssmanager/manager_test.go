package wssmanager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/unifi-cam-emulator/internal/driver"
	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
	"github.com/sua-org/unifi-cam-emulator/internal/tokenevent"
)

type fakeDriver struct {
	jpeg      []byte
	jpegErr   error
	stats     driver.SystemStats
	statsErr  error
	netStatus driver.NetworkStatus
	videoOut  driver.VideoSettings
	ispOut    driver.ISPSettings
}

func (f *fakeDriver) GetSnapshotJPEG(ctx context.Context) ([]byte, error) { return f.jpeg, f.jpegErr }
func (f *fakeDriver) GetSystemStats(ctx context.Context) (driver.SystemStats, error) {
	return f.stats, f.statsErr
}
func (f *fakeDriver) ApplyVideoSettings(ctx context.Context, p driver.VideoSettings) (driver.VideoSettings, error) {
	return f.videoOut, nil
}
func (f *fakeDriver) ApplyISPSettings(ctx context.Context, p driver.ISPSettings) (driver.ISPSettings, error) {
	return f.ispOut, nil
}
func (f *fakeDriver) NetworkStatus(ctx context.Context) (driver.NetworkStatus, error) {
	return f.netStatus, nil
}
func (f *fakeDriver) Close() error { return nil }

func newTestManager(t *testing.T) (*Manager, *settings.Store) {
	t.Helper()
	log := logx.New("wss-test", logx.LevelError)
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), log)
	require.NoError(t, err)
	require.NoError(t, store.Set("mac", "aa:bb:cc:dd:ee:ff"))
	require.NoError(t, store.Set("sysid", "0xa5a5"))

	fd := &fakeDriver{
		stats:     driver.SystemStats{CPU: 5, Memory: 20, Temperature: 45},
		netStatus: driver.NetworkStatus{Status: "connected"},
	}
	m := New(store, fd, tokenevent.New(), log)
	return m, store
}

func TestHelloGetsNoReply(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnHello, 1, false, nil)
	assert.Nil(t, reply)
	assert.False(t, shouldReply)
}

func TestParamAgreementReplyOK(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnParamAgree, 2, true, nil)
	require.True(t, shouldReply)
	assert.Equal(t, 0, reply["statusCode"])
	assert.Equal(t, "ok", reply["status"])
}

func TestTimeSyncRepliesWithBothTimestamps(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnTimeSync, 3, true, nil)
	require.True(t, shouldReply)
	assert.NotZero(t, reply["t1"])
	assert.Equal(t, reply["t1"], reply["t2"])
}

func TestGetSystemStatsReply(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnSystemStats, 4, true, nil)
	require.True(t, shouldReply)
	assert.Equal(t, 5.0, reply["cpu"])
	assert.Equal(t, 20.0, reply["memory"])
	assert.Equal(t, 45.0, reply["temperature"])
}

func TestNetworkStatusReply(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnNetworkStat, 5, true, nil)
	require.True(t, shouldReply)
	assert.Equal(t, "connected", reply["status"])
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", reply["deviceID"])
}

func TestEchoHandlersMergePayload(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), fnChangeOSD, 6, true, map[string]interface{}{"brightness": 50.0})
	require.True(t, shouldReply)
	assert.Equal(t, 50.0, reply["brightness"])
	assert.Equal(t, "ok", reply["status"])
}

func TestUnexpectedFunctionNoReplyWhenNotExpected(t *testing.T) {
	m, _ := newTestManager(t)
	_, shouldReply := m.dispatch(context.Background(), "SomeUnknownThing", 7, false, nil)
	assert.False(t, shouldReply)
}

func TestUnknownFunctionGenericOKWhenExpected(t *testing.T) {
	m, _ := newTestManager(t)
	reply, shouldReply := m.dispatch(context.Background(), "SomeUnknownThing", 8, true, nil)
	require.True(t, shouldReply)
	assert.Equal(t, "ok", reply["status"])
}

func TestCameraModelHeaderIsHexSysID(t *testing.T) {
	m, _ := newTestManager(t)
	assert.Equal(t, "a5a5", m.cameraModelHeader())
}

func TestSnapshotRequestUploadsAndRepliesOK(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(b)
		received = b
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, _ := newTestManager(t)
	m.drv = &fakeDriver{jpeg: []byte{0xff, 0xd8, 0xff, 0xd9}}

	reply := m.handleSnapshotRequest(context.Background(), "AA:BB:CC:DD:EE:FF", map[string]interface{}{
		"uri":       srv.URL,
		"timeoutMs": 5000.0,
	})
	assert.Equal(t, "ok", reply["status"])
	assert.NotEmpty(t, received)
}

func TestSnapshotRequestMissingURI(t *testing.T) {
	m, _ := newTestManager(t)
	reply := m.handleSnapshotRequest(context.Background(), "AA:BB:CC:DD:EE:FF", map[string]interface{}{})
	assert.Equal(t, "error", reply["status"])
}

func TestSnapshotRequestDriverFailureSkipsUpload(t *testing.T) {
	uploadCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploadCalled = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, _ := newTestManager(t)
	m.drv = &fakeDriver{jpegErr: assertErr("camera offline")}

	reply := m.handleSnapshotRequest(context.Background(), "AA:BB:CC:DD:EE:FF", map[string]interface{}{"uri": srv.URL})
	assert.Equal(t, "error", reply["status"])
	assert.False(t, uploadCalled)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
