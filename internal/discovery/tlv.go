// Package discovery implements the UDP TLV discovery responder: it
// listens on port 10001 for the controller's probe datagram and answers
// with a type/length/value encoded device description. Grounded on
// original_source/Unifi/discovery_responder.py, restructured around a
// context-cancelable poll loop.
package discovery

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	protocolVersion = 1
	cmdInfo         = 0
)

// Field ids, per the canonical TLV table.
const (
	fieldHWAddr                   = 1
	fieldFWVersion                = 3
	fieldUptime                   = 10
	fieldHostname                 = 11
	fieldPlatform                 = 12
	fieldESSID                    = 13
	fieldWMode                    = 14
	fieldWebUI                    = 15
	fieldSystemID                 = 16
	fieldModel                    = 20
	fieldModelShort               = 21
	fieldDeviceID                 = 32
	fieldControllerID             = 38
	fieldGUID                     = 43
	fieldDeviceDefaultCredentials = 44
	fieldPrimaryAddress           = 47
)

// probePrefix is the exactly-4-byte inbound probe: version=1, cmd=0, length=0.
var probePrefix = []byte{0x01, 0x00, 0x00, 0x00}

func isProbe(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == string(probePrefix)
}

func buildField(fieldID byte, data []byte) []byte {
	out := make([]byte, 3+len(data))
	out[0] = fieldID
	binary.BigEndian.PutUint16(out[1:3], uint16(len(data)))
	copy(out[3:], data)
	return out
}

// buildHeader prefixes payload with the 4-byte {version, cmd, len} header.
func buildHeader(payload []byte) []byte {
	header := make([]byte, 4)
	header[0] = protocolVersion
	header[1] = cmdInfo
	binary.BigEndian.PutUint16(header[2:], uint16(len(payload)))
	return header
}

// parseUUIDHex strips dashes from a UUID string and returns its 16 raw
// bytes, as used for the CONTROLLER_ID/GUID optional fields.
func parseUUIDHex(s string) ([]byte, error) {
	clean := strings.ReplaceAll(s, "-", "")
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("discovery: malformed uuid %q: %w", s, err)
	}
	if len(b) != 16 {
		return nil, fmt.Errorf("discovery: uuid %q is not 16 bytes", s)
	}
	return b, nil
}
