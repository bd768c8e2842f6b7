package wssmanager

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"
)

const defaultSnapshotTimeoutMs = 60000

var errNoURI = errors.New("wssmanager: missing payload.uri")

// handleSnapshotRequest implements GetRequest{what:"snapshot"}: pull a
// frame from the driver and PUT it to the controller-supplied URI.
func (m *Manager) handleSnapshotRequest(ctx context.Context, deviceID string, payload map[string]interface{}) map[string]interface{} {
	uri, _ := payload["uri"].(string)
	if uri == "" {
		return m.errorPayload(deviceID, errNoURI)
	}

	timeoutMs := defaultSnapshotTimeoutMs
	if v, ok := payload["timeoutMs"].(float64); ok && v > 0 {
		timeoutMs = int(v)
	}

	driverCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs/2)*time.Millisecond)
	defer cancel()

	jpeg, err := m.drv.GetSnapshotJPEG(driverCtx)
	if err != nil {
		m.log.Warnf("snapshot request: driver failed: %v", err)
		return m.errorPayload(deviceID, err)
	}

	uploadCtx, cancel2 := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel2()

	req, err := http.NewRequestWithContext(uploadCtx, http.MethodPut, uri, bytes.NewReader(jpeg))
	if err != nil {
		return m.errorPayload(deviceID, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.ContentLength = int64(len(jpeg))

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Warnf("snapshot request: upload to %s failed: %v", uri, err)
		return m.errorPayload(deviceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return map[string]interface{}{
			"deviceID":   deviceID,
			"statusCode": 1,
			"status":     "error",
		}
	}
	return okPayload(deviceID)
}
