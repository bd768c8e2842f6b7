// Package adoption implements the HTTPS management handshake server: it
// exposes POST|PUT /api/1.2/manage, promotes the device into a managed
// state, and signals the token-available event the WSS manager waits
// on. Grounded on original_source/Unifi/api_server.py, restructured
// around Go's net/http ServeMux + http.Server.
package adoption

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
	"github.com/sua-org/unifi-cam-emulator/internal/tokenevent"
)

// Server is the adoption HTTPS endpoint, port 443 by default.
type Server struct {
	store    *settings.Store
	log      *logx.Logger
	tokenEvt *tokenevent.Event
	addr     string
	certFile string
	keyFile  string

	httpServer *http.Server
}

func New(store *settings.Store, log *logx.Logger, tokenEvt *tokenevent.Event, addr, certFile, keyFile string) *Server {
	s := &Server{
		store:    store,
		log:      log,
		tokenEvt: tokenEvt,
		addr:     addr,
		certFile: certFile,
		keyFile:  keyFile,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/1.2/manage", s.handleManage)
	mux.HandleFunc("/", s.handleRoot)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	return s
}

// Run ensures a certificate exists, then serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := EnsureCert(ctx, s.certFile, s.keyFile, s.log); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("HTTPS adoption server listening on %s", s.addr)
		errCh <- s.httpServer.ListenAndServeTLS(s.certFile, s.keyFile)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.log.Debugf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		writeJSON(w, http.StatusOK, s.statusPayload())
	case http.MethodDelete:
		s.log.Debugf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) statusPayload() map[string]interface{} {
	return map[string]interface{}{
		"mac":             s.store.GetString("mac", ""),
		"marketName":      s.store.GetString("marketName", ""),
		"firmwareVersion": s.store.GetString("firmwareVersion", ""),
		"canAdopt":        s.store.GetBool("canAdopt", true),
	}
}
