package probe

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"
)

// mysqlProber parses the server's initial HandshakeV10 packet, which the
// server sends before any authentication: version string, connection id,
// capability flags and the advertised auth plugin all come for free.
// Credential guessing requires a full auth exchange and is not attempted.
type mysqlProber struct {
	timeout time.Duration
}

func newMySQLProber(opts Options) Prober {
	return &mysqlProber{timeout: opts.timeout()}
}

func (p *mysqlProber) Service() string     { return "mysql" }
func (p *mysqlProber) DefaultPorts() []int { return []int{3306} }

func (p *mysqlProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	raw, err := grabBanner(ctx, target, port, p.timeout, 1024)
	if err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	hs, ok := parseMySQLHandshake(raw)
	if !ok {
		res.fail(KindProtocol, errUnexpectedReply(string(raw)))
		return res
	}
	res.Detected = true
	for k, v := range hs {
		res.Findings[k] = v
	}
	return res
}

// parseMySQLHandshake decodes the interesting prefix of a HandshakeV10
// packet: 3-byte length, sequence byte, protocol version, NUL-terminated
// server version, connection id, then salt and capability flags.
func parseMySQLHandshake(raw []byte) (map[string]any, bool) {
	if len(raw) < 6 {
		return nil, false
	}
	body := raw[4:]

	// Servers that refuse the client host answer with an ERR packet (0xff).
	if body[0] == 0xff {
		out := map[string]any{"server_error": string(bytes.TrimRight(body[3:], "\x00"))}
		return out, true
	}
	if body[0] != 10 {
		return nil, false
	}

	nul := bytes.IndexByte(body[1:], 0)
	if nul < 0 {
		return nil, false
	}
	version := string(body[1 : 1+nul])
	rest := body[1+nul+1:]

	out := map[string]any{
		"protocol_version": 10,
		"version":          version,
	}
	if len(rest) >= 4 {
		out["connection_id"] = binary.LittleEndian.Uint32(rest[:4])
	}
	// auth-plugin-data-part-1 (8) + filler (1) + capability flags low (2).
	if len(rest) >= 15 {
		caps := uint32(binary.LittleEndian.Uint16(rest[13:15]))
		out["ssl_supported"] = caps&0x0800 != 0
	}
	if i := bytes.Index(rest, []byte("mysql_native_password")); i >= 0 {
		out["auth_plugin"] = "mysql_native_password"
	} else if i := bytes.Index(rest, []byte("caching_sha2_password")); i >= 0 {
		out["auth_plugin"] = "caching_sha2_password"
	}
	return out, true
}
