package upload

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

func newTestServer(t *testing.T, saveDir string) *Server {
	t.Helper()
	return New(":0", "cert.pem", "key.pem", saveDir, nil, logx.New("upload", logx.LevelError))
}

func TestPutUnknownPath404(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPut, "/unknown", bytes.NewReader([]byte("x")))
	rec := httptest.NewRecorder()
	s.handlePut(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutSnapshotStoresLastAndOK(t *testing.T) {
	s := newTestServer(t, "")
	body := []byte{0xff, 0xd8, 0xff, 0xe0}
	req := httptest.NewRequest(http.MethodPut, snapshotPrefix+"tok123", bytes.NewReader(body))
	req.RemoteAddr = "10.0.0.5:54321"
	rec := httptest.NewRecorder()
	s.handlePut(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	last, meta := s.LastSnapshot()
	assert.Equal(t, body, last)
	assert.Equal(t, len(body), meta.Length)
	assert.Equal(t, "10.0.0.5", meta.Client)
}

func TestPutSnapshotSavesToDisk(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)
	body := []byte{0xff, 0xd8, 0xff, 0xe0}
	req := httptest.NewRequest(http.MethodPut, snapshotPrefix+"tok123", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handlePut(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "tok123")
}

func TestDebugLastSnapshotBeforeAnyUpload(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, debugLastPath, nil)
	rec := httptest.NewRecorder()
	s.handleDebugLast(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugLastSnapshotAfterUpload(t *testing.T) {
	s := newTestServer(t, "")
	body := []byte{0xff, 0xd8, 0xff, 0xe0}
	putReq := httptest.NewRequest(http.MethodPut, snapshotPrefix+"tok", bytes.NewReader(body))
	s.handlePut(httptest.NewRecorder(), putReq)

	req := httptest.NewRequest(http.MethodGet, debugLastPath, nil)
	rec := httptest.NewRecorder()
	s.handleDebugLast(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, body, rec.Body.Bytes())
	assert.NotEmpty(t, rec.Header().Get("X-Meta-Sha256"))
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.5", clientIP("10.0.0.5:1234"))
	assert.Equal(t, "not-an-addr", clientIP("not-an-addr"))
}
