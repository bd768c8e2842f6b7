package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sua-org/unifi-cam-emulator/internal/models"
)

// Bootstrap runs the one-time startup sequence the Python original runs in
// CameraSettings.__init__: it fills in host, mac, marketName/platform/sysid/
// type, controllerId/guid, and a best-effort firmwareVersion lookup. It exits
// the process via log.Fatalf-equivalent (through fatal) on any condition the
// original treats as unrecoverable (missing CAMERA_MODEL, unknown model,
// missing network interface).
func (s *Store) Bootstrap(ctx context.Context, fatal func(format string, args ...interface{})) {
	s.ensureHost(fatal)
	s.ensureMAC(fatal)
	s.ensurePlatformAndSysID(fatal)
	s.ensureIdentifiers()
	s.ensureFirmware(ctx)
}

// ensureHost fills in "host" using the local address a UDP socket would use
// to reach the internet, mirroring the Python original's connect-to-8.8.8.8
// trick (no packets are actually sent; UDP connect just resolves a route).
func (s *Store) ensureHost(fatal func(format string, args ...interface{})) {
	if s.GetString("host", "") != "" {
		return
	}
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		fatal("settings: failed to determine local IP address: %v", err)
		return
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		fatal("settings: failed to determine local IP address")
		return
	}
	if err := s.Set("host", addr.IP.String()); err != nil {
		fatal("settings: failed to persist host: %v", err)
	}
}

// ensureMAC fills in "mac" by reading the named interface's hardware
// address out of sysfs, defaulting to eth0 as the original does.
func (s *Store) ensureMAC(fatal func(format string, args ...interface{})) {
	if s.GetString("mac", "") != "" {
		return
	}
	iface := os.Getenv("CAMERA_NET_INTERFACE")
	if iface == "" {
		iface = "eth0"
	}
	b, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/address", iface))
	if err != nil {
		fatal("settings: network interface %q not found: %v", iface, err)
		return
	}
	mac := strings.TrimSpace(string(b))
	if mac == "" {
		fatal("settings: empty MAC address for interface %q", iface)
		return
	}
	if err := s.Set("mac", mac); err != nil {
		fatal("settings: failed to persist mac: %v", err)
	}
}

// ensurePlatformAndSysID fills in marketName/platform/sysid/type, deriving
// platform and sysid from the internal/models registry the way
// CameraModelDatabase does in the original, and copying marketName into
// type.
func (s *Store) ensurePlatformAndSysID(fatal func(format string, args ...interface{})) {
	marketName := s.GetString("marketName", "")
	if marketName == "" {
		marketName = strings.TrimSpace(os.Getenv("CAMERA_MODEL"))
		if marketName == "" {
			fatal("settings: CAMERA_MODEL environment variable is required to set type or platform")
			return
		}
		if err := s.Set("marketName", marketName); err != nil {
			fatal("settings: failed to persist marketName: %v", err)
			return
		}
	}

	if s.GetString("platform", "") == "" {
		platform := models.Platform(marketName)
		if platform == "" {
			fatal("settings: unknown platform for type: %s", marketName)
			return
		}
		if err := s.Set("platform", platform); err != nil {
			fatal("settings: failed to persist platform: %v", err)
			return
		}
	}

	if s.GetString("sysid", "") == "" {
		sysid, ok := models.SysID(marketName)
		if !ok {
			fatal("settings: unknown system ID for type: %s", marketName)
			return
		}
		if err := s.Set("sysid", fmt.Sprintf("0x%x", sysid)); err != nil {
			fatal("settings: failed to persist sysid: %v", err)
			return
		}
	}

	if s.GetString("type", "") == "" {
		if err := s.Set("type", marketName); err != nil {
			fatal("settings: failed to persist type: %v", err)
		}
	}
}

// ensureIdentifiers seeds controllerId/guid with fresh random UUIDs when the
// settings file doesn't already carry ones from a prior run. The original
// Python process has no equivalent of these fields; they were introduced for
// the discovery/adoption handshake and are generated once, then reused.
func (s *Store) ensureIdentifiers() {
	if s.GetString("controllerId", "") == "" {
		_ = s.Set("controllerId", uuid.NewString())
	}
	if s.GetString("guid", "") == "" {
		_ = s.Set("guid", uuid.NewString())
	}
}

// ensureFirmware performs a best-effort GraphQL lookup of the latest
// published camera firmware version against community.svc.ui.com, ported
// from _fetch_latest_camera_firmware_api. Any failure (network, parse,
// no matching release, empty version) just leaves firmwareVersion
// untouched and logs instead of aborting startup.
func (s *Store) ensureFirmware(ctx context.Context) {
	status := strings.ToUpper(strings.TrimSpace(os.Getenv("FIRMWARE_STATUS")))
	if status == "" {
		status = "GA"
	}

	version, err := fetchLatestFirmwareVersion(ctx, status)
	if err != nil {
		s.log.Debugf("firmware lookup skipped: %v", err)
		return
	}
	if version == "" {
		s.log.Infof("latest camera firmware: unavailable via API")
		return
	}
	if err := s.Set("firmwareVersion", version); err != nil {
		s.log.Warnf("failed to persist firmwareVersion: %v", err)
		return
	}
	s.log.Infof("latest camera firmware: %s", version)
}

const firmwareAPIURL = "https://community.svc.ui.com/graphql"

const firmwareQuery = `query ReleaseFeedListQuery($tags:[String!],$betas:[String!],$alphas:[String!],` +
	`$offset:Int,$limit:Int,$sortBy:ReleasesSortBy,$userIsFollowing:Boolean,$featuredOnly:Boolean,` +
	`$searchTerm:String,$filterTags:[String!],$filterEATags:[String!]){` +
	`releases(tags:$tags,betas:$betas,alphas:$alphas,offset:$offset,limit:$limit,sortBy:$sortBy,` +
	`userIsFollowing:$userIsFollowing,featuredOnly:$featuredOnly,searchTerm:$searchTerm,` +
	`filterTags:$filterTags,filterEATags:$filterEATags){pageInfo{offset limit}totalCount ` +
	`items{id title slug tags stage version createdAt lastActivityAt}}}`

type firmwareRelease struct {
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Stage          string `json:"stage"`
	Version        string `json:"version"`
	LastActivityAt string `json:"lastActivityAt"`
}

type firmwareResponse struct {
	Data struct {
		Releases struct {
			Items []firmwareRelease `json:"items"`
		} `json:"releases"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// fetchLatestFirmwareVersion mirrors the Python original's progressively
// loosened variable sets: it tries the tightest filter first and falls back
// to broader ones until a candidate list comes back non-empty.
func fetchLatestFirmwareVersion(ctx context.Context, status string) (string, error) {
	candidates := []map[string]interface{}{
		{"limit": 10, "offset": 0, "sortBy": "LATEST", "tags": []string{"unifi-protect"},
			"betas": []string{}, "alphas": []string{}, "searchTerm": "camera", "filterTags": []string{"cameras"}},
		{"limit": 10, "offset": 0, "sortBy": "LATEST", "tags": []string{"unifi-protect"},
			"betas": []string{}, "alphas": []string{}, "searchTerm": "camera"},
		{"limit": 10, "offset": 0, "sortBy": "LATEST", "tags": []string{"unifi-protect"},
			"betas": []string{}, "alphas": []string{}},
		{"limit": 10, "offset": 0, "sortBy": "LATEST",
			"betas": []string{}, "alphas": []string{}, "searchTerm": "UniFi Protect Cameras"},
		{"limit": 10, "offset": 0, "sortBy": "LATEST"},
	}

	var items []firmwareRelease
	for _, vars := range candidates {
		got, err := postFirmwareQuery(ctx, vars)
		if err != nil {
			continue
		}
		if len(got) > 0 {
			items = got
			break
		}
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no firmware releases found")
	}

	isCameras := func(r firmwareRelease) bool {
		t := strings.ToLower(r.Title)
		sl := strings.ToLower(r.Slug)
		return strings.Contains(t, "unifi protect cameras") || strings.Contains(sl, "unifi-protect-cameras") || strings.Contains(t, "cameras")
	}

	camItems := filterReleases(items, isCameras)
	if len(camItems) == 0 {
		camItems = items
	}
	preferStage := filterReleases(camItems, func(r firmwareRelease) bool {
		return strings.ToUpper(r.Stage) == status
	})
	if len(preferStage) == 0 {
		preferStage = camItems
	}

	best := preferStage[0]
	for _, r := range preferStage[1:] {
		if compareRelease(r, best) > 0 {
			best = r
		}
	}
	return best.Version, nil
}

func filterReleases(items []firmwareRelease, pred func(firmwareRelease) bool) []firmwareRelease {
	var out []firmwareRelease
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

func compareRelease(a, b firmwareRelease) int {
	av, bv := parseSemver(a.Version), parseSemver(b.Version)
	for i := range av {
		if av[i] != bv[i] {
			return av[i] - bv[i]
		}
	}
	if a.LastActivityAt > b.LastActivityAt {
		return 1
	}
	if a.LastActivityAt < b.LastActivityAt {
		return -1
	}
	return 0
}

func parseSemver(v string) [3]int {
	var out [3]int
	parts := strings.SplitN(v, ".", 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err == nil {
			out[i] = n
		}
	}
	return out
}

func postFirmwareQuery(ctx context.Context, variables map[string]interface{}) ([]firmwareRelease, error) {
	payload := map[string]interface{}{
		"query":         firmwareQuery,
		"variables":     variables,
		"operationName": "ReleaseFeedListQuery",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, firmwareAPIURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Origin", "https://community.ui.com")
	req.Header.Set("Referer", "https://community.ui.com/RELEASES")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) unifi-cam-emulator/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed firmwareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", parsed.Errors[0].Message)
	}
	return parsed.Data.Releases.Items, nil
}
