package wssmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

func TestParseFunctionList(t *testing.T) {
	assert.Nil(t, parseFunctionList(""))
	got := parseFunctionList("GetSystemStats, NetworkStatus")
	assert.True(t, got["GetSystemStats"])
	assert.True(t, got["NetworkStatus"])
	assert.False(t, got["ChangeVideoSettings"])
}

func TestLogFilterThrottleSuppressesRepeat(t *testing.T) {
	f := &logFilter{throttle: time.Hour, lastLogAt: map[string]time.Time{}}
	assert.True(t, f.shouldLogNow(fnSystemStats))
	assert.False(t, f.shouldLogNow(fnSystemStats))
}

func TestLogFilterDenyListSkipsSilently(t *testing.T) {
	f := &logFilter{deny: map[string]bool{fnNetworkStat: true}, throttle: time.Hour, lastLogAt: map[string]time.Time{}}
	log := logx.New("wss-test", logx.LevelDebug)
	f.log(log, fnNetworkStat, []byte(`{}`))
	// A denied call returns before the throttle records it.
	assert.NotContains(t, f.lastLogAt, fnNetworkStat)
}

func TestLogFilterAllowListRestrictsToNamed(t *testing.T) {
	f := &logFilter{allow: map[string]bool{fnHello: true, fnSystemStats: true}, throttle: time.Hour, lastLogAt: map[string]time.Time{}}
	log := logx.New("wss-test", logx.LevelDebug)
	f.log(log, fnHello, []byte(`{}`))
	f.log(log, fnTimeSync, []byte(`{}`))
	f.log(log, fnSystemStats, []byte(`{}`))
	f.log(log, fnNetworkStat, []byte(`{}`))
	// Only an allowed call reaches the throttle and gets recorded.
	assert.Contains(t, f.lastLogAt, fnSystemStats)
	assert.NotContains(t, f.lastLogAt, fnNetworkStat)
}
