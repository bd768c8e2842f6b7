package discovery

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
)

func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"), logx.New("settings", logx.LevelError))
	require.NoError(t, err)
	require.NoError(t, store.Update(map[string]interface{}{
		"mac":             "aa:bb:cc:dd:ee:ff",
		"host":            "192.168.1.10",
		"platform":        "s5l",
		"sysid":           "0xa573",
		"firmwareVersion": "v5.0.129",
		"type":            "UVC_G4_DOME",
	}))
	return New(store, logx.New("discovery", logx.LevelError))
}

func findField(payload []byte, id byte) ([]byte, bool) {
	for i := 0; i+3 <= len(payload); {
		fid := payload[i]
		length := int(binary.BigEndian.Uint16(payload[i+1 : i+3]))
		if i+3+length > len(payload) {
			return nil, false
		}
		value := payload[i+3 : i+3+length]
		if fid == id {
			return value, true
		}
		i += 3 + length
	}
	return nil, false
}

func TestBuildResponseHeader(t *testing.T) {
	r := newTestResponder(t)
	resp, err := r.buildResponse()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(resp), 4)
	assert.Equal(t, byte(1), resp[0])
	assert.Equal(t, byte(0), resp[1])
	payloadLen := binary.BigEndian.Uint16(resp[2:4])
	assert.Equal(t, int(payloadLen), len(resp)-4)
}

func TestBuildResponseSystemID(t *testing.T) {
	r := newTestResponder(t)
	resp, err := r.buildResponse()
	require.NoError(t, err)

	value, ok := findField(resp[4:], fieldSystemID)
	require.True(t, ok)
	require.Len(t, value, 2)
	assert.Equal(t, uint16(42355), binary.LittleEndian.Uint16(value))
}

func TestBuildResponsePrimaryAddress(t *testing.T) {
	r := newTestResponder(t)
	resp, err := r.buildResponse()
	require.NoError(t, err)

	value, ok := findField(resp[4:], fieldPrimaryAddress)
	require.True(t, ok)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 192, 168, 1, 10}, value)
}

func TestBuildResponseModelShortStripsPrefix(t *testing.T) {
	r := newTestResponder(t)
	resp, err := r.buildResponse()
	require.NoError(t, err)

	value, ok := findField(resp[4:], fieldModelShort)
	require.True(t, ok)
	assert.Equal(t, "G4 DOME", string(value))
}

func TestIsProbe(t *testing.T) {
	assert.True(t, isProbe([]byte{0x01, 0x00, 0x00, 0x00}))
	assert.True(t, isProbe([]byte{0x01, 0x00, 0x00, 0x00, 0xff}))
	assert.False(t, isProbe([]byte{0x02, 0x00, 0x00, 0x00}))
	assert.False(t, isProbe([]byte{0x01, 0x00, 0x00}))
}
