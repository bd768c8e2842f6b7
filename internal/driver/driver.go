// Package driver implements the brand-agnostic camera driver interface and
// the concrete drivers the WSS manager dispatches snapshot/system-stat/
// settings requests to. It is grounded on
// original_source/Unifi/drivers/camera_driver.py, restructured around a
// registered-factory pattern keyed by camera.type.
package driver

import "context"

// VideoSettings is the payload accepted/returned by ApplyVideoSettings.
type VideoSettings map[string]interface{}

// ISPSettings is the payload accepted/returned by ApplyISPSettings.
type ISPSettings map[string]interface{}

// SystemStats mirrors the fields the controller polls via GetSystemStats.
type SystemStats struct {
	CPU         float64 `json:"cpu"`
	Memory      float64 `json:"memory"`
	Temperature float64 `json:"temperature"`
}

// NetworkStatus is returned by NetworkStatus.
type NetworkStatus struct {
	Status string `json:"status"`
}

// CameraDriver is the brand-agnostic camera API the WSS manager drives.
// Every method corresponds 1:1 to a controller-originated WSS request type.
type CameraDriver interface {
	// GetSnapshotJPEG returns a single JPEG frame, respecting ctx's deadline.
	GetSnapshotJPEG(ctx context.Context) ([]byte, error)

	// GetSystemStats returns the stats shown in the controller's device
	// detail view. Drivers with no real sensor access may return static
	// defaults.
	GetSystemStats(ctx context.Context) (SystemStats, error)

	// ApplyVideoSettings applies (or acknowledges) a video settings payload
	// and returns the fields the controller should read back.
	ApplyVideoSettings(ctx context.Context, payload VideoSettings) (VideoSettings, error)

	// ApplyISPSettings applies (or acknowledges) an ISP settings payload.
	ApplyISPSettings(ctx context.Context, payload ISPSettings) (ISPSettings, error)

	// NetworkStatus reports the driver's view of its own connectivity.
	NetworkStatus(ctx context.Context) (NetworkStatus, error)

	// Close releases any resources (HTTP clients, sockets) held by the
	// driver.
	Close() error
}
