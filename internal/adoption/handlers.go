package adoption

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultWSSPort = 7442

type manageRequest struct {
	Mgmt struct {
		Token       string   `json:"token"`
		Hosts       []string `json:"hosts"`
		Protocol    string   `json:"protocol"`
		ConsoleID   string   `json:"consoleId"`
		Controller  string   `json:"controller"`
		NVR         string   `json:"nvr"`
		ConsoleName string   `json:"consoleName"`
	} `json:"mgmt"`
}

func (s *Server) handleManage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Warnf("failed to read /api/1.2/manage body: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}
	s.log.Debugf("%s %s from %s: %s", r.Method, r.URL.Path, r.RemoteAddr, body)

	var req manageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.log.Errorf("failed to parse /api/1.2/manage body: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	if req.Mgmt.Token == "" || len(req.Mgmt.Hosts) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing token or hosts"})
		return
	}

	host, port := splitHostPort(req.Mgmt.Hosts[0])
	connectionHost := fmt.Sprintf("%s:%d", host, port)

	initialized := s.store.GetBool("mgmt.initialized", false)
	nowMS := time.Now().UnixMilli()

	if !initialized {
		update := map[string]interface{}{
			"mgmt.token":          req.Mgmt.Token,
			"mgmt.hosts":          req.Mgmt.Hosts,
			"mgmt.protocol":       req.Mgmt.Protocol,
			"mgmt.consoleId":      req.Mgmt.ConsoleID,
			"mgmt.controller":     req.Mgmt.Controller,
			"mgmt.nvr":            req.Mgmt.NVR,
			"mgmt.consoleName":    req.Mgmt.ConsoleName,
			"mgmt.connectionHost": connectionHost,
			"mgmt.initialized":    true,
			"mgmt.tokenUpdatedAt": nowMS,
			"canAdopt":            false,
		}
		if err := s.store.Update(update); err != nil {
			s.log.Errorf("failed to persist adoption: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
		s.log.Infof("first adoption: token=%s host=%s", req.Mgmt.Token, connectionHost)
	} else {
		storedHost := s.store.GetString("mgmt.connectionHost", "")
		if storedHost != "" && storedHost != connectionHost {
			s.log.Warnf("adoption host changed from %s to %s; keeping stored host", storedHost, connectionHost)
		}
		if err := s.store.Update(map[string]interface{}{
			"mgmt.token":          req.Mgmt.Token,
			"mgmt.tokenUpdatedAt": nowMS,
		}); err != nil {
			s.log.Errorf("failed to persist token rotation: %v", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
			return
		}
		s.log.Infof("token rotated: token=%s", req.Mgmt.Token)
	}

	s.store.Set("lastSeen", nowMS)

	s.tokenEvt.Signal()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mac":             s.store.GetString("mac", ""),
		"model":           s.store.GetString("marketName", ""),
		"firmwareVersion": s.store.GetString("firmwareVersion", ""),
		"sysid":           s.store.GetString("sysid", ""),
		"token":           req.Mgmt.Token,
		"hosts":           []string{s.store.GetString("mgmt.connectionHost", connectionHost)},
		"services": map[string]int{
			"https": 443,
			"wss":   defaultWSSPort,
		},
	})
}

// splitHostPort parses "host:port", defaulting to 7442 if the port is
// missing or non-numeric.
func splitHostPort(hostPort string) (string, int) {
	idx := strings.LastIndex(hostPort, ":")
	if idx < 0 {
		return hostPort, defaultWSSPort
	}
	host := hostPort[:idx]
	port, err := strconv.Atoi(hostPort[idx+1:])
	if err != nil {
		return host, defaultWSSPort
	}
	return host, port
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
