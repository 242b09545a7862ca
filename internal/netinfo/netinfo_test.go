package netinfo

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHosts(t *testing.T) {
	input := `
127.0.0.1   localhost
# build farm
192.168.1.10  ci.corp.local build.corp.local  # primary
192.168.1.10  ci.corp.local
10.0.1.5      app.corp.local

garbage line
not.an.ip     broken.example
`
	mappings, err := parseHosts(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"127.0.0.1"}, mappings["localhost"])
	assert.Equal(t, []string{"192.168.1.10"}, mappings["ci.corp.local"]) // dedup
	assert.Equal(t, []string{"192.168.1.10"}, mappings["build.corp.local"])
	assert.Equal(t, []string{"10.0.1.5"}, mappings["app.corp.local"])
	assert.NotContains(t, mappings, "broken.example")
}

func TestTargetLines(t *testing.T) {
	lines := TargetLines("192.168.1.0/24", map[string][]string{
		"web.corp.local": {"192.168.1.20"},
		"app.corp.local": {"192.168.1.21"},
	})
	assert.Equal(t, []string{"192.168.1.0/24", "app.corp.local", "web.corp.local"}, lines)
}

func TestTargetLinesNoSubnet(t *testing.T) {
	lines := TargetLines("", map[string][]string{"a.local": {"10.0.0.1"}})
	assert.Equal(t, []string{"a.local"}, lines)
}

func TestNetworkCIDRMasksHostBits(t *testing.T) {
	ip, ipNet, err := net.ParseCIDR("192.168.1.57/24")
	require.NoError(t, err)
	ipNet.IP = ip // carry the host address, as interface Addrs() does
	assert.Equal(t, "192.168.1.0/24", networkCIDR(ipNet))
}
