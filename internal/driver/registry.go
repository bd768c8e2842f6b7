package driver

import (
	"fmt"
	"strings"
)

// Config is the subset of settings a driver factory needs to construct a
// driver: the brand selector plus whatever brand-specific fields (ip,
// user, pass, channel, ...) that brand reads out of it.
type Config map[string]interface{}

// Factory builds a CameraDriver from a Config.
type Factory func(cfg Config) (CameraDriver, error)

var registry = map[string]Factory{}

// RegisterDriver is called from each driver's init() to add it to the
// brand registry Build looks up from.
func RegisterDriver(brand string, f Factory) {
	registry[normalize(brand)] = f
}

// Build looks up the driver factory for cfg's "type" field (falling back to
// "null" the way build_camera_driver does in the original) and constructs
// it.
func Build(cfg Config) (CameraDriver, error) {
	brand, _ := cfg["type"].(string)
	if brand == "" {
		brand = "null"
	}
	f, ok := registry[normalize(brand)]
	if !ok {
		return nil, fmt.Errorf("driver: %w: %s", ErrDriverNotFound, brand)
	}
	return f(cfg)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
