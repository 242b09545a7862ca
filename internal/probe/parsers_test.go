package probe

import (
	"encoding/binary"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatLines(t *testing.T) {
	text := "STAT version 1.6.21\r\nSTAT curr_connections 3\r\nEND\r\nnoise\r\nSTAT uptime 12 34\r\n"
	stats := parseStatLines(text)
	assert.Equal(t, "1.6.21", stats["version"])
	assert.Equal(t, "3", stats["curr_connections"])
	assert.Equal(t, "12 34", stats["uptime"])
	assert.NotContains(t, stats, "END")
}

func TestGroupSlabStats(t *testing.T) {
	stats := map[string]string{
		"1:chunk_size":  "96",
		"1:total_pages": "2",
		"12:chunk_size": "9664",
		"curr_items":    "40",
	}
	slabs := groupSlabStats(stats)
	require.Len(t, slabs, 2)
	assert.Equal(t, "96", slabs["1"]["chunk_size"])
	assert.Equal(t, "2", slabs["1"]["total_pages"])
	assert.Equal(t, "9664", slabs["12"]["chunk_size"])
}

func buildMySQLHandshake(version string, connID uint32, caps uint16, plugin string) []byte {
	body := []byte{10}
	body = append(body, version...)
	body = append(body, 0)
	id := make([]byte, 4)
	binary.LittleEndian.PutUint32(id, connID)
	body = append(body, id...)
	body = append(body, make([]byte, 8)...) // auth-plugin-data-part-1
	body = append(body, 0)                  // filler
	capBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(capBytes, caps)
	body = append(body, capBytes...)
	body = append(body, make([]byte, 20)...)
	body = append(body, plugin...)

	pkt := []byte{byte(len(body)), 0, 0, 0}
	return append(pkt, body...)
}

func TestParseMySQLHandshake(t *testing.T) {
	raw := buildMySQLHandshake("8.0.36", 42, 0x0800, "caching_sha2_password")
	hs, ok := parseMySQLHandshake(raw)
	require.True(t, ok)
	assert.Equal(t, 10, hs["protocol_version"])
	assert.Equal(t, "8.0.36", hs["version"])
	assert.Equal(t, uint32(42), hs["connection_id"])
	assert.Equal(t, true, hs["ssl_supported"])
	assert.Equal(t, "caching_sha2_password", hs["auth_plugin"])
}

func TestParseMySQLHandshakeErrPacket(t *testing.T) {
	raw := []byte{9, 0, 0, 0, 0xff, 0x15, 0x04}
	raw = append(raw, "Host blocked"...)
	hs, ok := parseMySQLHandshake(raw)
	require.True(t, ok)
	assert.Equal(t, "Host blocked", hs["server_error"])
}

func TestParseMySQLHandshakeRejectsGarbage(t *testing.T) {
	_, ok := parseMySQLHandshake([]byte{1, 0, 0, 0, 99, 99, 99})
	assert.False(t, ok)
}

func TestParseRedisInfo(t *testing.T) {
	reply := "$120\r\n# Server\r\nredis_version:7.2.4\r\nredis_mode:standalone\r\n\r\nos:Linux\r\n"
	info := parseRedisInfo(reply)
	assert.Equal(t, "7.2.4", info["redis_version"])
	assert.Equal(t, "standalone", info["redis_mode"])
	assert.Equal(t, "Linux", info["os"])
	assert.NotContains(t, info, "# Server")
}

func TestParseRESPStrings(t *testing.T) {
	reply := "*2\r\n$3\r\ndir\r\n$16\r\n/var/lib/redis\r\n"
	values := parseRESPStrings(reply)
	assert.Equal(t, []string{"dir", "/var/lib/redis"}, values)
}

func TestParseExports(t *testing.T) {
	out := "Export list for 10.0.0.5:\n/srv/share 10.0.0.0/24,192.168.1.10\n/backup (everyone)\n"
	exports := parseExports(out)
	require.Len(t, exports, 2)
	assert.Equal(t, "/srv/share", exports[0]["export"])
	assert.Equal(t, []string{"10.0.0.0/24", "192.168.1.10"}, exports[0]["allowed_hosts"])
	assert.Equal(t, "/backup", exports[1]["export"])
}

func TestParseBrowserInstances(t *testing.T) {
	payload := "ServerName;SQLHOST;InstanceName;MSSQLSERVER;IsClustered;No;Version;15.0.2000.5;tcp;1433;;" +
		"ServerName;SQLHOST;InstanceName;DEV;IsClustered;No;Version;14.0.1000.169;tcp;51433;;"
	instances := parseBrowserInstances(payload)
	require.Len(t, instances, 2)
	assert.Equal(t, "MSSQLSERVER", instances[0]["InstanceName"])
	assert.Equal(t, "15.0.2000.5", instances[0]["Version"])
	assert.Equal(t, "DEV", instances[1]["InstanceName"])
	assert.Equal(t, "51433", instances[1]["tcp"])
}

func TestReplyAccepted(t *testing.T) {
	assert.True(t, replyAccepted([]string{"250 OK"}))
	assert.False(t, replyAccepted([]string{"550 relay denied"}))
	assert.False(t, replyAccepted(nil))
}

func TestLongestPrintableRun(t *testing.T) {
	raw := []byte{0x7e, 0x81, 0x00, 'E', 'X', 'A', 'M', 'P', 'L', 'E', '.', 'C', 'O', 'M', 0x00, 0x02, 'k', 'r', 'b'}
	assert.Equal(t, "EXAMPLE.COM", longestPrintableRun(raw))
}

func TestSNMPUsableReply(t *testing.T) {
	assert.False(t, snmpUsableReply(nil))
	assert.False(t, snmpUsableReply(&gosnmp.SnmpPacket{}))
	assert.False(t, snmpUsableReply(&gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Type: gosnmp.NoSuchObject}},
	}))
	assert.False(t, snmpUsableReply(&gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Type: gosnmp.NoSuchInstance}},
	}))
	assert.True(t, snmpUsableReply(&gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Type: gosnmp.OctetString, Value: []byte("Linux host")}},
	}))
}
