package wssmanager

import "encoding/json"

// envelope is the JSON frame shape exchanged over the control channel in
// both directions: a functionName/messageId envelope with an
// inResponseTo correlation id for replies.
type envelope struct {
	From             string          `json:"from,omitempty"`
	To               string          `json:"to,omitempty"`
	FunctionName     string          `json:"functionName"`
	MessageID        int64           `json:"messageId"`
	ResponseExpected bool            `json:"responseExpected,omitempty"`
	InResponseTo     int64           `json:"inResponseTo,omitempty"`
	TimeStamp        string          `json:"timeStamp,omitempty"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

const (
	fromCamera     = "ubnt_avclient"
	toController   = "UniFiVideo"
	fnHello        = "ubnt_avclient_hello"
	fnParamAgree   = "ubnt_avclient_paramAgreement"
	fnTimeSync     = "ubnt_avclient_timeSync"
	fnConfigure    = "ubnt_avclient_configure"
	fnStart        = "ubnt_avclient_start"
	fnSystemStats  = "GetSystemStats"
	fnNetworkStat  = "NetworkStatus"
	fnChangeVideo  = "ChangeVideoSettings"
	fnChangeISP    = "ChangeIspSettings"
	fnChangeOSD    = "ChangeOsdSettings"
	fnChangeSound  = "ChangeSoundLedSettings"
	fnChangeTalk   = "ChangeTalkbackSettings"
	fnChangeAnalyt = "ChangeAnalyticsSettings"
	fnChangeDevice = "ChangeDeviceSettings"
	fnAnalyticTest = "AnalyticsTest"
	fnUpdateUserPw = "UpdateUsernamePassword"
	fnGetRequest   = "GetRequest"
	fnSyncStats    = "cameras.syncStatsAndVideo"
)

func okPayload(deviceID string) map[string]interface{} {
	return map[string]interface{}{
		"deviceID":   deviceID,
		"statusCode": 0,
		"status":     "ok",
	}
}

func mergePayload(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
