// Package settings implements the dot-path-addressable, persisted,
// thread-safe configuration store shared by every component of the
// camera emulator, guarded by a single sync.Mutex over the in-memory
// document.
package settings

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

// Store is a hierarchical key/value mapping with "." as the nesting
// separator, persisted to a single pretty-printed JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	data map[string]interface{}
	log  *logx.Logger
}

// Open loads path if it exists, or seeds it with DefaultSettings() and
// writes it out. It never performs the startup bootstrap sequence
// (host/MAC/model/firmware) — call Bootstrap for that.
func Open(path string, log *logx.Logger) (*Store, error) {
	s := &Store{path: path, log: log}

	if b, err := os.ReadFile(path); err == nil {
		var data map[string]interface{}
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("settings: parse %s: %w", path, err)
		}
		s.data = data
		log.Infof("loaded existing settings from %s", path)
		return s, nil
	}

	log.Infof("creating default settings at %s", path)
	s.data = DefaultSettings()
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultSettings returns the seed document written on first run.
func DefaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"mac":             "",
		"host":            "",
		"type":            "",
		"sysid":           "",
		"platform":        "",
		"marketName":      "",
		"firmwareVersion": "",
		"canAdopt":        true,
		"camera": map[string]interface{}{
			"type": "null",
		},
		"wss": map[string]interface{}{
			"syncStatsAndVideo": false,
		},
		"logging": map[string]interface{}{
			"level": "info",
			"adoption": map[string]interface{}{
				"level": "debug",
			},
			"discovery": map[string]interface{}{
				"level": "info",
			},
			"uptime": map[string]interface{}{
				"level": "info",
			},
			"wss": map[string]interface{}{
				"level": "debug",
			},
			"upload": map[string]interface{}{
				"level": "info",
			},
			"driver": map[string]interface{}{
				"level": "info",
			},
		},
	}
}

// Get returns the value at dotted key, or def if the path is missing or
// traverses a non-mapping value.
func (s *Store) Get(key string, def interface{}) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := getNested(s.data, key)
	if !ok {
		return def
	}
	return v
}

// MustGet is the indexing form: it fails with ErrNotFound rather than
// substituting a default.
func (s *Store) MustGet(key string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := getNested(s.data, key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Contains reports whether key resolves to a present value.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := getNested(s.data, key)
	return ok
}

// GetString is a typed convenience wrapper over Get.
func (s *Store) GetString(key, def string) string {
	v := s.Get(key, def)
	str, ok := v.(string)
	if !ok {
		return def
	}
	return str
}

// GetBool is a typed convenience wrapper over Get.
func (s *Store) GetBool(key string, def bool) bool {
	v := s.Get(key, def)
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// GetInt is a typed convenience wrapper over Get; JSON numbers decode
// as float64, so this also accepts that shape.
func (s *Store) GetInt(key string, def int) int {
	v := s.Get(key, def)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Set writes a single dotted key. It is a no-op (and never touches
// disk) if the existing value already equals value.
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := setNested(s.data, key, value)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.persistLocked()
}

// Update writes several dotted keys as one batch, persisting at most
// once.
func (s *Store) Update(values map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for k, v := range values {
		c, err := setNested(s.data, k, v)
		if err != nil {
			return err
		}
		changed = changed || c
	}
	if !changed {
		return nil
	}
	return s.persistLocked()
}

// MACBytes parses the dotted key (default "mac") as "aa:bb:cc:dd:ee:ff"
// (case-insensitive, colons optional) into 6 raw bytes.
func (s *Store) MACBytes(key string) ([]byte, error) {
	if key == "" {
		key = "mac"
	}
	raw, ok := s.Get(key, "").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("settings: %s: %w", key, ErrMalformedField)
	}
	clean := strings.ReplaceAll(raw, ":", "")
	if len(clean) != 12 {
		return nil, fmt.Errorf("settings: %s=%q: %w", key, raw, ErrMalformedField)
	}
	b := make([]byte, 6)
	for i := 0; i < 6; i++ {
		var v int
		if _, err := fmt.Sscanf(clean[i*2:i*2+2], "%02x", &v); err != nil {
			return nil, fmt.Errorf("settings: %s=%q: %w", key, raw, ErrMalformedField)
		}
		b[i] = byte(v)
	}
	return b, nil
}

// IPBytes parses the dotted key (default "host") as a dotted IPv4
// address into 4 raw bytes.
func (s *Store) IPBytes(key string) ([]byte, error) {
	if key == "" {
		key = "host"
	}
	raw, ok := s.Get(key, "").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("settings: %s: %w", key, ErrMalformedField)
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return nil, fmt.Errorf("settings: %s=%q: %w", key, raw, ErrMalformedField)
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("settings: %s=%q: %w", key, raw, ErrMalformedField)
	}
	return []byte(v4), nil
}

// Snapshot returns a deep-enough copy of the whole document for
// read-only inspection, taken under a single lock.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(s.data)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return out
}

func (s *Store) persistLocked() error {
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := renameio.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("settings: persist %s: %w", s.path, err)
	}
	return nil
}

func getNested(data map[string]interface{}, dottedKey string) (interface{}, bool) {
	keys := strings.Split(dottedKey, ".")
	var cur interface{} = data
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[k]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func setNested(data map[string]interface{}, dottedKey string, value interface{}) (bool, error) {
	keys := strings.Split(dottedKey, ".")
	d := data
	for _, k := range keys[:len(keys)-1] {
		cur, ok := d[k]
		if !ok || cur == nil {
			next := map[string]interface{}{}
			d[k] = next
			d = next
			continue
		}
		next, ok := cur.(map[string]interface{})
		if !ok {
			return false, fmt.Errorf("settings: %s at %q: %w", dottedKey, k, ErrInvalidPath)
		}
		d = next
	}
	last := keys[len(keys)-1]
	if existing, ok := d[last]; ok && valuesEqual(existing, value) {
		return false, nil
	}
	d[last] = value
	return true, nil
}

func valuesEqual(a, b interface{}) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
