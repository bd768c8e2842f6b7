// Package upload implements the HTTPS snapshot upload sink: the
// controller PUTs JPEG bytes here after requesting a snapshot via the
// WSS control channel. Grounded on
// original_source/Unifi/upload_server.py, restructured around Go's
// net/http the same way internal/adoption is (no web framework for
// device-facing protocol endpoints).
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/storage"
)

const (
	snapshotPrefix = "/internal/camera-upload/"
	debugLastPath  = "/debug/last-snapshot"
)

// Meta is the small diagnostic record kept alongside the last uploaded
// body, surfaced via X-Meta-* headers on the debug endpoint.
type Meta struct {
	When   string `json:"when"`
	Length int    `json:"length"`
	SHA256 string `json:"sha256"`
	Path   string `json:"path"`
	Client string `json:"client"`
}

// Server is the HTTPS upload sink, port 7444 by default.
type Server struct {
	addr     string
	certFile string
	keyFile  string
	saveDir  string
	archive  storage.SnapshotArchive
	log      *logx.Logger

	mu       sync.Mutex
	lastBody []byte
	lastMeta Meta

	httpServer *http.Server
}

func New(addr, certFile, keyFile, saveDir string, archive storage.SnapshotArchive, log *logx.Logger) *Server {
	s := &Server{
		addr:     addr,
		certFile: certFile,
		keyFile:  keyFile,
		saveDir:  saveDir,
		archive:  archive,
		log:      log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(snapshotPrefix, s.handlePut)
	mux.HandleFunc(debugLastPath, s.handleDebugLast)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("upload server listening on https://%s", s.addr)
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

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !strings.HasPrefix(r.URL.Path, snapshotPrefix) {
		s.log.Warnf("PUT %s from %s -> 404 (unknown path)", r.URL.Path, r.RemoteAddr)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Errorf("upload handler error for %s: %v", r.URL.Path, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	sum := sha256.Sum256(body)
	meta := Meta{
		When:   time.Now().UTC().Format(time.RFC3339Nano),
		Length: len(body),
		SHA256: hex.EncodeToString(sum[:]),
		Path:   r.URL.Path,
		Client: clientIP(r.RemoteAddr),
	}

	s.mu.Lock()
	s.lastBody = body
	s.lastMeta = meta
	s.mu.Unlock()

	token := strings.TrimPrefix(r.URL.Path, snapshotPrefix)
	if token == "" {
		token = "snapshot"
	}

	var savedPath string
	if s.saveDir != "" {
		savedPath, err = s.saveToDisk(token, body)
		if err != nil {
			s.log.Warnf("failed to save snapshot to disk: %v", err)
		}
	}

	if s.archive != nil {
		go func() {
			archiveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			key := fmt.Sprintf("%s/%s.jpg", token, time.Now().UTC().Format("20060102_150405"))
			if _, err := s.archive.SaveSnapshot(archiveCtx, key, body, "image/jpeg"); err != nil {
				s.log.Warnf("snapshot archival failed: %v", err)
			}
		}()
	}

	w.WriteHeader(http.StatusOK)

	logLine := fmt.Sprintf("PUT snapshot OK len=%d sha256=%s path=%s from=%s",
		meta.Length, meta.SHA256[:12], meta.Path, meta.Client)
	if savedPath != "" {
		logLine += " saved=" + savedPath
	}
	s.log.Debugf("%s", logLine)
}

func (s *Server) saveToDisk(token string, body []byte) (string, error) {
	if err := os.MkdirAll(s.saveDir, 0o755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("%s_%s.jpg", time.Now().Format("20060102_150405"), token)
	path := filepath.Join(s.saveDir, filename)
	if err := renameio.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Server) handleDebugLast(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body := s.lastBody
	meta := s.lastMeta
	s.mu.Unlock()

	if len(body) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Bytes", strconv.Itoa(len(body)))
	w.Header().Set("X-Meta-When", meta.When)
	w.Header().Set("X-Meta-Length", strconv.Itoa(meta.Length))
	w.Header().Set("X-Meta-Sha256", meta.SHA256)
	w.Header().Set("X-Meta-Path", meta.Path)
	w.Header().Set("X-Meta-Client", meta.Client)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) LastSnapshot() ([]byte, Meta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody, s.lastMeta
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
