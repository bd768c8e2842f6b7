// Package wssmanager implements the WSS control-plane client: it dials
// the controller's WebSocket endpoint, reconnects on failure, and
// dispatches each inbound envelope to a handler. Reconnects use a fixed
// ≤5s backoff short-circuited by the adoption token event.
package wssmanager

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sua-org/unifi-cam-emulator/internal/driver"
	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
	"github.com/sua-org/unifi-cam-emulator/internal/tokenevent"
)

const (
	reconnectBackoff  = 5 * time.Second
	tokenWaitTimeout  = 10 * time.Second
	statsSyncInterval = 10 * time.Second
)

type connectKey struct {
	addr  string // host:port, as stored in mgmt.connectionHost
	token string
}

func (k connectKey) valid() bool {
	return k.addr != "" && k.token != ""
}

// Manager owns the single outbound WSS connection to the controller.
type Manager struct {
	store    *settings.Store
	drv      driver.CameraDriver
	tokenEvt *tokenevent.Event
	log      *logx.Logger
	filter   *logFilter

	httpClient *http.Client

	writeMu   sync.Mutex
	conn      *websocket.Conn
	msgID     int64
	connected atomic.Bool
}

func New(store *settings.Store, drv driver.CameraDriver, tokenEvt *tokenevent.Event, log *logx.Logger) *Manager {
	return &Manager{
		store:    store,
		drv:      drv,
		tokenEvt: tokenEvt,
		log:      log,
		filter:   newLogFilter(store),
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Run dials, dispatches and reconnects until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		key := m.currentKey()
		if !key.valid() {
			m.waitForToken(ctx, tokenWaitTimeout)
			continue
		}

		if err := m.runConnection(ctx, key); err != nil {
			m.log.Warnf("wss connection ended: %v", err)
		}

		if ctx.Err() != nil {
			return nil
		}
		m.waitForToken(ctx, reconnectBackoff)
	}
}

func (m *Manager) currentKey() connectKey {
	return connectKey{
		addr:  m.store.GetString("mgmt.connectionHost", ""),
		token: m.store.GetString("mgmt.token", ""),
	}
}

func (m *Manager) waitForToken(ctx context.Context, timeout time.Duration) {
	select {
	case <-ctx.Done():
	case <-m.tokenEvt.C():
	case <-time.After(timeout):
	}
}

func (m *Manager) runConnection(ctx context.Context, key connectKey) error {
	conn, err := m.dial(ctx, key)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	m.writeMu.Lock()
	m.conn = conn
	m.msgID = 0
	m.writeMu.Unlock()
	m.connected.Store(true)
	defer m.connected.Store(false)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go m.watchKeyChange(connCtx, key, conn)
	if m.store.GetBool("wss.syncStatsAndVideo", false) {
		go m.runStatsSync(connCtx)
	}

	if err := m.sendHello(); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType == websocket.BinaryMessage {
			m.log.Debugf("ignoring %d-byte binary frame", len(data))
			continue
		}
		m.handleFrame(connCtx, data)
	}
}

// watchKeyChange tears the connection down if the controller's
// (host, port, token) triple changes while it's open.
func (m *Manager) watchKeyChange(ctx context.Context, key connectKey, conn *websocket.Conn) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.currentKey() != key {
				m.log.Infof("connect key changed; tearing down connection")
				conn.Close()
				return
			}
		}
	}
}

func (m *Manager) dial(ctx context.Context, key connectKey) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   "wss",
		Host:     key.addr,
		Path:     "/camera/1.0/ws",
		RawQuery: "token=" + url.QueryEscape(key.token),
	}

	header := http.Header{}
	header.Set("Camera-Mac", m.store.GetString("mac", ""))
	header.Set("Camera-Model", m.cameraModelHeader())

	dialer := websocket.Dialer{
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: true},
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{"secure_transfer"},
	}

	m.log.Infof("dialing %s", u.String())
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		m.log.Warnf("dial with secure_transfer subprotocol failed: %v; retrying without", err)
		dialer.Subprotocols = nil
		conn, resp, err = dialer.DialContext(ctx, u.String(), header)
		if err != nil {
			return nil, err
		}
	}
	if resp != nil {
		resp.Body.Close()
	}
	return conn, nil
}

// cameraModelHeader sends the hex sysid string rather than the
// marketName; matches observed-working controller behavior.
func (m *Manager) cameraModelHeader() string {
	return strings.TrimPrefix(m.store.GetString("sysid", ""), "0x")
}

func (m *Manager) sendHello() error {
	payload := map[string]interface{}{
		"fwVersion":            m.store.GetString("firmwareVersion", ""),
		"ip":                   m.store.GetString("host", ""),
		"uptime":               m.store.GetInt("uptime", 0),
		"connectionHost":       m.store.GetString("mgmt.connectionHost", ""),
		"connectionSecurePort": 7442,
		"protocolVersion":      1,
	}
	return m.sendFrame(fnHello, 0, false, payload)
}

// sendFrame serializes an outbound envelope under writeMu so the serve
// loop and the periodic stats task never interleave writes.
func (m *Manager) sendFrame(functionName string, inResponseTo int64, responseExpected bool, payload interface{}) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if m.conn == nil {
		return fmt.Errorf("wss: not connected")
	}
	m.msgID++

	body, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	env := envelope{
		From:             fromCamera,
		To:               toController,
		FunctionName:     functionName,
		MessageID:        m.msgID,
		ResponseExpected: responseExpected,
		TimeStamp:        time.Now().UTC().Format(time.RFC3339),
		Payload:          body,
	}
	if inResponseTo != 0 {
		env.InResponseTo = inResponseTo
	}

	return m.conn.WriteJSON(env)
}

func (m *Manager) runStatsSync(ctx context.Context) {
	ticker := time.NewTicker(statsSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := m.drv.GetSystemStats(ctx)
			if err != nil {
				m.log.Warnf("syncStatsAndVideo: driver stats failed: %v", err)
				return
			}
			if err := m.sendFrame(fnSyncStats, 0, false, stats); err != nil {
				m.log.Warnf("syncStatsAndVideo: send failed: %v", err)
				return
			}
		}
	}
}

// IsConnected reports whether the manager currently holds an open WSS
// connection, for diagnostics.
func (m *Manager) IsConnected() bool {
	return m.connected.Load()
}
