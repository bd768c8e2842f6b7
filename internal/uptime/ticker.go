// Package uptime runs the background loop that keeps the camera's
// reported uptime current: a time.Ticker driving a periodic settings
// write under ctx cancellation.
package uptime

import (
	"context"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
)

const tickInterval = 1 * time.Second

// Run recomputes uptime = (now - upSince) / 1000 every second until ctx
// is cancelled. It silently no-ops on a tick where upSince hasn't been
// seeded yet; it is never fatal.
func Run(ctx context.Context, store *settings.Store, log *logx.Logger) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	log.Infof("uptime ticker started (interval=%s)", tickInterval)

	for {
		select {
		case <-ctx.Done():
			log.Infof("uptime ticker stopped")
			return
		case <-ticker.C:
			tick(store, log)
		}
	}
}

func tick(store *settings.Store, log *logx.Logger) {
	if !store.Contains("upSince") {
		return
	}
	upSince := store.GetInt("upSince", 0)
	if upSince == 0 {
		return
	}
	nowMs := time.Now().UnixMilli()
	seconds := (nowMs - int64(upSince)) / 1000
	if err := store.Set("uptime", seconds); err != nil {
		log.Warnf("failed to persist uptime: %v", err)
	}
}
