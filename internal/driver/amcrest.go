package driver

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

func init() {
	RegisterDriver("amcrest", func(cfg Config) (CameraDriver, error) {
		ip, _ := cfg["ip"].(string)
		user, _ := cfg["user"].(string)
		pass, _ := cfg["pass"].(string)
		if ip == "" || user == "" {
			return nil, fmt.Errorf("driver: amcrest requires ip and user")
		}
		channel, _ := cfg["channel"].(int)
		if f, ok := cfg["channel"].(float64); ok {
			channel = int(f)
		}
		https, _ := cfg["https"].(bool)
		verifySSL, _ := cfg["verify_ssl"].(bool)

		transport := &http.Transport{}
		if https && !verifySSL {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}

		return &AmcrestDriver{
			ip:      ip,
			user:    user,
			pass:    pass,
			channel: channel,
			https:   https,
			client:  &http.Client{Transport: transport, Timeout: 10 * time.Second},
		}, nil
	})
}

// AmcrestDriver fetches single-frame JPEG snapshots over HTTP Digest auth
// from cgi-bin/snapshot.cgi, ported from
// original_source/Unifi/drivers/amcrest.py.
type AmcrestDriver struct {
	ip      string
	user    string
	pass    string
	channel int
	https   bool
	client  *http.Client
}

func (d *AmcrestDriver) snapshotURL() string {
	proto := "http"
	if d.https {
		proto = "https"
	}
	return fmt.Sprintf("%s://%s/cgi-bin/snapshot.cgi?channel=%d", proto, d.ip, d.channel)
}

func (d *AmcrestDriver) GetSnapshotJPEG(ctx context.Context) ([]byte, error) {
	client := d.client
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("amcrest: snapshot request: %w", context.DeadlineExceeded)
		}
		if remaining < client.Timeout {
			bounded := *d.client
			bounded.Timeout = remaining
			client = &bounded
		}
	}
	resp, err := digestGet(client, d.snapshotURL(), d.user, d.pass)
	if err != nil {
		return nil, fmt.Errorf("amcrest: snapshot request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("amcrest: snapshot returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (d *AmcrestDriver) GetSystemStats(ctx context.Context) (SystemStats, error) {
	return hostSystemStats(ctx), nil
}

func (d *AmcrestDriver) ApplyVideoSettings(ctx context.Context, payload VideoSettings) (VideoSettings, error) {
	video, _ := payload["video"]
	return VideoSettings{"video": video}, nil
}

func (d *AmcrestDriver) ApplyISPSettings(ctx context.Context, payload ISPSettings) (ISPSettings, error) {
	out := ISPSettings{"statusCode": 0, "status": "ok"}
	for k, v := range payload {
		out[k] = v
	}
	if _, ok := out["mountPosition"]; !ok {
		out["mountPosition"] = "ceiling"
	}
	return out, nil
}

func (d *AmcrestDriver) NetworkStatus(ctx context.Context) (NetworkStatus, error) {
	return NetworkStatus{Status: "connected"}, nil
}

func (d *AmcrestDriver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
