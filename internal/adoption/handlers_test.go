package adoption

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
	"github.com/sua-org/unifi-cam-emulator/internal/tokenevent"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), logx.New("settings", logx.LevelError))
	require.NoError(t, err)
	require.NoError(t, store.Update(map[string]interface{}{
		"mac":             "aa:bb:cc:dd:ee:ff",
		"marketName":      "UVC_G4_DOME",
		"firmwareVersion": "v5.0.129",
		"sysid":           "0xa573",
	}))
	return New(store, logx.New("adoption", logx.LevelError), tokenevent.New(), ":0", "cert.pem", "key.pem")
}

func postManage(t *testing.T, s *Server, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/1.2/manage", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	s.handleManage(rec, req)
	return rec
}

func TestManageMissingTokenOrHosts(t *testing.T) {
	s := newTestServer(t)
	rec := postManage(t, s, map[string]interface{}{"mgmt": map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManageInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/1.2/manage", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.handleManage(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestManageFirstAdoption(t *testing.T) {
	s := newTestServer(t)
	rec := postManage(t, s, map[string]interface{}{
		"mgmt": map[string]interface{}{
			"token":     "T",
			"hosts":     []string{"10.0.0.1:7442"},
			"protocol":  "wss",
			"consoleId": "c1",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, s.store.GetBool("mgmt.initialized", false))
	assert.False(t, s.store.GetBool("canAdopt", true))
	assert.Equal(t, "T", s.store.GetString("mgmt.token", ""))
	assert.Equal(t, "10.0.0.1:7442", s.store.GetString("mgmt.connectionHost", ""))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "T", resp["token"])
	assert.Equal(t, "UVC_G4_DOME", resp["model"])
	assert.Equal(t, []interface{}{"10.0.0.1:7442"}, resp["hosts"])
}

func TestManageTokenRotationPreservesHost(t *testing.T) {
	s := newTestServer(t)
	postManage(t, s, map[string]interface{}{
		"mgmt": map[string]interface{}{"token": "T1", "hosts": []string{"10.0.0.1:7442"}},
	})

	rec := postManage(t, s, map[string]interface{}{
		"mgmt": map[string]interface{}{"token": "T2", "hosts": []string{"10.0.0.2:7442"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "T2", s.store.GetString("mgmt.token", ""))
	assert.Equal(t, "10.0.0.1:7442", s.store.GetString("mgmt.connectionHost", ""))
}

func TestHandleRootGet(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleRoot(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleRootDelete(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodDelete, "/anything", nil)
	rec := httptest.NewRecorder()
	s.handleRoot(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
