package adoption

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

// EnsureCert generates a self-signed RSA-2048 certificate valid for 365
// days with CN=localhost if certFile/keyFile don't already both exist,
// shelling out to openssl via exec.CommandContext.
func EnsureCert(ctx context.Context, certFile, keyFile string, log *logx.Logger) error {
	if _, err := os.Stat(certFile); err == nil {
		if _, err := os.Stat(keyFile); err == nil {
			return nil
		}
	}

	log.Warnf("%s or %s not found, generating self-signed certificate", certFile, keyFile)

	genCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(genCtx, "openssl", "req", "-x509", "-newkey", "rsa:2048",
		"-nodes", "-keyout", keyFile, "-out", certFile,
		"-days", "365",
		"-subj", "/CN=localhost",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("adoption: generate self-signed certificate: %w: %s", err, out)
	}

	log.Infof("self-signed certificate generated at %s", certFile)
	return nil
}
