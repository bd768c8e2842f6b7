// cmd/unifi-cam-proxy/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sua-org/unifi-cam-emulator/internal/adoption"
	"github.com/sua-org/unifi-cam-emulator/internal/discovery"
	"github.com/sua-org/unifi-cam-emulator/internal/driver"
	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
	"github.com/sua-org/unifi-cam-emulator/internal/storage"
	"github.com/sua-org/unifi-cam-emulator/internal/telemetry"
	"github.com/sua-org/unifi-cam-emulator/internal/tokenevent"
	"github.com/sua-org/unifi-cam-emulator/internal/upload"
	"github.com/sua-org/unifi-cam-emulator/internal/uptime"
	"github.com/sua-org/unifi-cam-emulator/internal/wssmanager"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] warning: could not load .env: %v", err)
	} else {
		log.Printf("[main] .env loaded successfully")
	}

	bootLevel := logx.ParseLevel(getenv("LOG_LEVEL", "info"))
	settingsLog := logx.New("settings", bootLevel)

	store, err := settings.Open(getenv("SETTINGS_PATH", "settings.json"), settingsLog)
	if err != nil {
		log.Fatalf("[main] failed to open settings: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.Bootstrap(ctx, func(format string, args ...interface{}) {
		log.Fatalf("[main] "+format, args...)
	})

	seedUptime(store)

	certFile := getenv("CERT_FILE", "cert.pem")
	keyFile := getenv("KEY_FILE", "key.pem")

	if err := adoption.EnsureCert(ctx, certFile, keyFile, componentLog(store, "main", bootLevel)); err != nil {
		log.Fatalf("[main] failed to provision TLS certificate: %v", err)
	}

	tokenEvt := tokenevent.New()

	go uptime.Run(ctx, store, componentLog(store, "uptime", bootLevel))

	if store.GetBool("canAdopt", true) {
		discoveryLog := componentLog(store, "discovery", bootLevel)
		go func() {
			if err := discovery.New(store, discoveryLog).Run(ctx); err != nil {
				discoveryLog.Errorf("discovery responder terminated: %v", err)
			}
		}()
	}

	adoptionLog := componentLog(store, "adoption", bootLevel)
	adoptionAddr := getenv("ADOPTION_ADDR", ":443")
	go func() {
		srv := adoption.New(store, adoptionLog, tokenEvt, adoptionAddr, certFile, keyFile)
		if err := srv.Run(ctx); err != nil {
			adoptionLog.Errorf("adoption server terminated: %v", err)
		}
	}()

	storageLog := componentLog(store, "storage", bootLevel)
	var archive storage.SnapshotArchive
	if minioStore, err := storage.NewMinioStoreFromEnv(storageLog); err != nil {
		storageLog.Warnf("snapshot archival disabled: %v", err)
	} else if minioStore != nil {
		archive = minioStore
	}

	uploadLog := componentLog(store, "upload", bootLevel)
	uploadAddr := getenv("UPLOAD_ADDR", ":7444")
	saveDir := getenv("SNAPSHOT_SAVE_DIR", "")
	go func() {
		srv := upload.New(uploadAddr, certFile, keyFile, saveDir, archive, uploadLog)
		if err := srv.Run(ctx); err != nil {
			uploadLog.Errorf("upload server terminated: %v", err)
		}
	}()

	driverLog := componentLog(store, "driver", bootLevel)
	cameraCfg, _ := store.Get("camera", map[string]interface{}{}).(map[string]interface{})
	drv, err := driver.Build(driver.Config(cameraCfg))
	if err != nil {
		driverLog.Warnf("failed to build configured driver, falling back to null: %v", err)
		drv, err = driver.Build(driver.Config{"type": "null"})
		if err != nil {
			log.Fatalf("[main] failed to build fallback null driver: %v", err)
		}
	}
	defer drv.Close()

	wssLog := componentLog(store, "wss", bootLevel)
	wssMgr := wssmanager.New(store, drv, tokenEvt, wssLog)
	go func() {
		if err := wssMgr.Run(ctx); err != nil {
			wssLog.Errorf("wss manager terminated: %v", err)
		}
	}()

	if cfg, ok := telemetry.ConfigFromEnv("unifi-cam-emulator"); ok {
		telemetryLog := componentLog(store, "telemetry", bootLevel)
		pub, err := telemetry.NewPublisher(cfg, telemetryLog)
		if err != nil {
			telemetryLog.Warnf("mqtt telemetry disabled: %v", err)
		} else {
			go pub.Run(ctx, 30*time.Second, func() telemetry.StatusSnapshot {
				return telemetry.StatusSnapshot{
					MAC:           store.GetString("mac", ""),
					UptimeSeconds: store.GetInt("uptime", 0),
					WSSConnected:  wssMgr.IsConnected(),
				}
			})
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	<-sig
	log.Println("[main] signal received, shutting down...")
	cancel()
	time.Sleep(1 * time.Second)
}

// seedUptime writes the startup-time baseline Bootstrap doesn't set
// itself: upSince in epoch milliseconds and a zeroed uptime.
func seedUptime(store *settings.Store) {
	if !store.Contains("upSince") {
		_ = store.Set("upSince", time.Now().UnixMilli())
	}
	if !store.Contains("uptime") {
		_ = store.Set("uptime", 0)
	}
}

// componentLog builds a per-component logger whose level is read from
// settings ("logging.<tag>.level"), falling back to the global
// "logging.level" and finally to the process-wide boot level.
func componentLog(store *settings.Store, tag string, fallback logx.Level) *logx.Logger {
	levelStr := store.GetString("logging."+tag+".level", store.GetString("logging.level", ""))
	level := fallback
	if levelStr != "" {
		level = logx.ParseLevel(levelStr)
	}
	return logx.New(tag, level)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
