package wssmanager

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/driver"
)

func marshalPayload(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func (m *Manager) deviceID() string {
	return strings.ToUpper(m.store.GetString("mac", ""))
}

// handleFrame parses one inbound text frame and dispatches it to the
// handler for its functionName, replying when the controller expects
// one. A handler panic or error never brings down the connection: an
// error is answered with an error payload where a reply was expected,
// and a panic is recovered and logged with its stack and the frame is
// dropped without a reply.
func (m *Manager) handleFrame(ctx context.Context, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.log.Warnf("malformed inbound frame: %v", err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("handler for %s (mid=%d) panicked: %v\n%s", env.FunctionName, env.MessageID, r, debug.Stack())
		}
	}()

	m.filter.log(m.log, env.FunctionName, data)

	var payload map[string]interface{}
	if len(env.Payload) > 0 {
		_ = json.Unmarshal(env.Payload, &payload)
	}

	reply, shouldReply := m.dispatch(ctx, env.FunctionName, env.MessageID, env.ResponseExpected, payload)
	if !shouldReply {
		return
	}
	if err := m.sendFrame(env.FunctionName, env.MessageID, false, reply); err != nil {
		m.log.Warnf("failed to reply to %s (mid=%d): %v", env.FunctionName, env.MessageID, err)
	}
}

// dispatch returns the reply payload and whether a reply frame should be
// sent at all. It implements the function table.
func (m *Manager) dispatch(ctx context.Context, fn string, mid int64, expect bool, payload map[string]interface{}) (map[string]interface{}, bool) {
	if !expect {
		return nil, false
	}

	deviceID := m.deviceID()

	switch fn {
	case fnHello:
		return nil, false

	case fnParamAgree:
		return mergePayload(okPayload(deviceID), map[string]interface{}{}), true

	case fnTimeSync:
		now := time.Now().UnixMilli()
		return mergePayload(okPayload(deviceID), map[string]interface{}{"t1": now, "t2": now}), true

	case fnConfigure, fnStart:
		return okPayload(deviceID), true

	case fnSystemStats:
		stats, err := m.drv.GetSystemStats(ctx)
		if err != nil {
			return m.errorPayload(deviceID, err), true
		}
		return mergePayload(okPayload(deviceID), map[string]interface{}{
			"cpu":         stats.CPU,
			"memory":      stats.Memory,
			"temperature": stats.Temperature,
			"uptime":      m.store.GetInt("uptime", 0),
		}), true

	case fnNetworkStat:
		status, err := m.drv.NetworkStatus(ctx)
		if err != nil {
			return m.errorPayload(deviceID, err), true
		}
		return mergePayload(okPayload(deviceID), map[string]interface{}{
			"status": status.Status,
			"ip":     m.store.GetString("host", ""),
			"mac":    m.store.GetString("mac", ""),
		}), true

	case fnChangeVideo:
		result, err := m.drv.ApplyVideoSettings(ctx, driver.VideoSettings(payload))
		if err != nil {
			return m.errorPayload(deviceID, err), true
		}
		return mergePayload(okPayload(deviceID), result), true

	case fnChangeISP:
		result, err := m.drv.ApplyISPSettings(ctx, driver.ISPSettings(payload))
		if err != nil {
			return m.errorPayload(deviceID, err), true
		}
		return mergePayload(okPayload(deviceID), result), true

	case fnChangeOSD, fnChangeSound, fnChangeTalk, fnChangeAnalyt, fnChangeDevice, fnAnalyticTest, fnUpdateUserPw:
		return mergePayload(okPayload(deviceID), payload), true

	case fnGetRequest:
		if payload["what"] == "snapshot" {
			return m.handleSnapshotRequest(ctx, deviceID, payload), true
		}
		return okPayload(deviceID), true

	default:
		return okPayload(deviceID), true
	}
}

func (m *Manager) errorPayload(deviceID string, err error) map[string]interface{} {
	return map[string]interface{}{
		"deviceID":   deviceID,
		"statusCode": 1,
		"status":     "error",
		"message":    fmt.Sprintf("%v", err),
	}
}
