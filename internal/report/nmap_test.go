package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" version="7.94">
  <host>
    <status state="up" reason="echo-reply"/>
    <address addr="10.0.0.5" addrtype="ipv4"/>
    <address addr="AA:BB:CC:DD:EE:FF" addrtype="mac"/>
    <hostnames>
      <hostname name="web01.corp.local" type="PTR"/>
    </hostnames>
    <ports>
      <port protocol="tcp" portid="22">
        <state state="open" reason="syn-ack"/>
        <service name="ssh" product="OpenSSH" version="9.6"/>
      </port>
      <port protocol="tcp" portid="80">
        <state state="open" reason="syn-ack"/>
        <service name="http" product="nginx"/>
      </port>
      <port protocol="tcp" portid="443">
        <state state="closed" reason="reset"/>
        <service name="https"/>
      </port>
    </ports>
  </host>
  <host>
    <status state="down" reason="no-response"/>
    <address addr="10.0.0.6" addrtype="ipv4"/>
  </host>
</nmaprun>`

func TestParseXML(t *testing.T) {
	hosts, err := ParseXML(strings.NewReader(sampleXML))
	require.NoError(t, err)
	require.Len(t, hosts, 1)

	h := hosts[0]
	assert.Equal(t, "10.0.0.5", h.IP)
	assert.Equal(t, "web01.corp.local", h.Hostname)
	require.Len(t, h.Ports, 2) // closed 443 dropped
	assert.Equal(t, 22, h.Ports[0].Number)
	assert.Equal(t, "OpenSSH", h.Ports[0].Product)
	assert.Equal(t, "9.6", h.Ports[0].Version)
	assert.Equal(t, 80, h.Ports[1].Number)
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := ParseXML(strings.NewReader("this is not xml"))
	assert.Error(t, err)
}

func TestParseGrepable(t *testing.T) {
	gnmap := "# Nmap 7.94 scan initiated\n" +
		"Host: 10.0.0.5 (web01)\tStatus: Up\n" +
		"Host: 10.0.0.5 (web01)\tPorts: 22/open/tcp//ssh///, 80/open/tcp//http///, 443/closed/tcp//https///\tIgnored State: filtered (995)\n" +
		"Host: 10.0.0.9 ()\tPorts: 3306/open/tcp//mysql///\n"

	hosts, err := ParseGrepable(strings.NewReader(gnmap))
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	assert.Equal(t, "10.0.0.5", hosts[0].IP)
	require.Len(t, hosts[0].Ports, 2)
	assert.Equal(t, "ssh", hosts[0].Ports[0].Service)
	assert.Equal(t, 3306, hosts[1].Ports[0].Number)
}

func TestExcludePorts(t *testing.T) {
	hosts := []Host{{
		IP: "10.0.0.5",
		Ports: []Port{
			{Number: 22, Service: "ssh"},
			{Number: 80, Service: "http"},
			{Number: 443, Service: "https"},
		},
	}}
	out := ExcludePorts(hosts, []int{80, 443})
	require.Len(t, out, 1) // host stays live
	require.Len(t, out[0].Ports, 1)
	assert.Equal(t, 22, out[0].Ports[0].Number)
}

func TestWriteCSV(t *testing.T) {
	hosts := []Host{
		{IP: "10.0.0.5", Ports: []Port{{Number: 22, Service: "ssh"}, {Number: 80, Service: "http"}}},
		{IP: "10.0.0.9", Ports: []Port{{Number: 3306, Service: "mysql"}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(hosts, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "IP,Port,Service", lines[0])
	assert.Equal(t, "10.0.0.5,22,ssh", lines[1])
	assert.Equal(t, "10.0.0.9,3306,mysql", lines[3])
}
