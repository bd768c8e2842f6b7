package wssmanager

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
)

// logFilter trims the WSS dispatch log down to what an operator actually
// wants to see: an optional allow-list (WSS_LOG_ONLY), an optional
// deny-list (WSS_SILENCE), and a per-interval throttle for the two
// high-frequency polling calls.
type logFilter struct {
	allow     map[string]bool
	deny      map[string]bool
	throttle  time.Duration
	mu        sync.Mutex
	lastLogAt map[string]time.Time
}

var throttledFunctions = map[string]bool{
	fnNetworkStat: true,
	fnSystemStats: true,
}

func newLogFilter(store *settings.Store) *logFilter {
	throttleSecs := 0
	if v := os.Getenv("WSS_THROTTLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			throttleSecs = n
		}
	}
	return &logFilter{
		allow:     parseFunctionList(os.Getenv("WSS_LOG_ONLY")),
		deny:      parseFunctionList(os.Getenv("WSS_SILENCE")),
		throttle:  time.Duration(throttleSecs) * time.Second,
		lastLogAt: make(map[string]time.Time),
	}
}

func parseFunctionList(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	out := make(map[string]bool)
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out[name] = true
		}
	}
	return out
}

// log writes a debug line for fn unless it's denied, not on an active
// allow-list, or throttled.
func (f *logFilter) log(l *logx.Logger, fn string, data []byte) {
	if len(f.deny) > 0 && f.deny[fn] {
		return
	}
	if len(f.allow) > 0 && !f.allow[fn] {
		return
	}
	if throttledFunctions[fn] && f.throttle > 0 && !f.shouldLogNow(fn) {
		return
	}
	l.Debugf("recv %s: %s", fn, data)
}

func (f *logFilter) shouldLogNow(fn string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	if last, ok := f.lastLogAt[fn]; ok && now.Sub(last) < f.throttle {
		return false
	}
	f.lastLogAt[fn] = now
	return true
}
