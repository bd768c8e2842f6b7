package discovery

import (
	"context"
	"encoding/binary"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
	"github.com/sua-org/unifi-cam-emulator/internal/settings"
)

// Port is the well-known UDP discovery port controllers probe.
const Port = 10001

// Responder answers discovery probes with the device's TLV description.
type Responder struct {
	store *settings.Store
	log   *logx.Logger
}

func New(store *settings.Store, log *logx.Logger) *Responder {
	return &Responder{store: store, log: log}
}

// Run binds 0.0.0.0:10001 and answers probes until ctx is cancelled or
// canAdopt flips to false, matching the original's "discovery only runs
// pre-adoption" behavior.
func (r *Responder) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: Port})
	if err != nil {
		return err
	}
	defer conn.Close()

	r.log.Infof("listening for discovery on %s:%d", r.store.GetString("host", ""), Port)

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !r.store.GetBool("canAdopt", true) {
			r.log.Infof("exiting discovery loop because canAdopt is false")
			return nil
		}

		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			r.log.Warnf("read error: %v", err)
			continue
		}

		data := buf[:n]
		r.log.Debugf("received discovery from %s: %x", addr, data)

		if !isProbe(data) {
			continue
		}

		response, err := r.buildResponse()
		if err != nil {
			r.log.Warnf("failed to build discovery response: %v", err)
			continue
		}
		r.log.Debugf("sending discovery response to %s: %x", addr, response)
		if _, err := conn.WriteToUDP(response, addr); err != nil {
			r.log.Warnf("failed to send discovery response: %v", err)
		}
	}
}

func (r *Responder) buildResponse() ([]byte, error) {
	macBytes, err := r.store.MACBytes("mac")
	if err != nil {
		return nil, err
	}
	ipBytes, err := r.store.IPBytes("host")
	if err != nil {
		return nil, err
	}

	host := r.store.GetString("host", "")
	platform := r.store.GetString("platform", "")
	firmware := r.store.GetString("firmwareVersion", "")
	macColon := r.store.GetString("mac", "")
	typ := r.store.GetString("type", "")
	uptime := r.store.GetInt("uptime", 0)

	var payload []byte
	payload = append(payload, buildField(fieldHWAddr, macBytes)...)
	payload = append(payload, buildField(fieldFWVersion, []byte(firmware))...)
	payload = append(payload, buildField(fieldUptime, uint32BE(uint32(uptime)))...)
	payload = append(payload, buildField(fieldHostname, []byte(host))...)
	payload = append(payload, buildField(fieldPlatform, []byte(platform))...)
	payload = append(payload, buildField(fieldESSID, nil)...)
	payload = append(payload, buildField(fieldWMode, []byte{1})...)

	webui := make([]byte, 4)
	binary.BigEndian.PutUint16(webui[0:2], 1)
	binary.BigEndian.PutUint16(webui[2:4], 443)
	payload = append(payload, buildField(fieldWebUI, webui)...)

	sysid, err := r.sysidUint16()
	if err != nil {
		return nil, err
	}
	sysidLE := make([]byte, 2)
	binary.LittleEndian.PutUint16(sysidLE, sysid)
	payload = append(payload, buildField(fieldSystemID, sysidLE)...)

	if typ != "" {
		payload = append(payload, buildField(fieldModel, []byte(typ))...)
		short := strings.ReplaceAll(strings.TrimPrefix(typ, "UVC_"), "_", " ")
		payload = append(payload, buildField(fieldModelShort, []byte(short))...)
	}

	payload = append(payload, buildField(fieldDeviceID, []byte(macColon))...)

	if controllerID := r.store.GetString("controllerId", ""); controllerID != "" {
		if b, err := parseUUIDHex(controllerID); err == nil {
			payload = append(payload, buildField(fieldControllerID, b)...)
		}
	}
	if guid := r.store.GetString("guid", ""); guid != "" {
		if b, err := parseUUIDHex(guid); err == nil {
			payload = append(payload, buildField(fieldGUID, b)...)
		}
	}

	payload = append(payload, buildField(fieldDeviceDefaultCredentials, []byte{1})...)

	primary := append(append([]byte{}, macBytes...), ipBytes...)
	payload = append(payload, buildField(fieldPrimaryAddress, primary)...)

	return append(buildHeader(payload), payload...), nil
}

func (r *Responder) sysidUint16() (uint16, error) {
	raw := strings.TrimPrefix(r.store.GetString("sysid", ""), "0x")
	n, err := strconv.ParseUint(raw, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

func uint32BE(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
