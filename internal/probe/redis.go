package probe

import (
	"context"
	"net"
	"strings"
	"time"
)

// redisProber speaks inline RESP commands, the same read-only sequence the
// original enumerator issued through a client library: PING to test for
// unauthenticated access, then INFO, CONFIG GET dir/requirepass and DBSIZE.
type redisProber struct {
	timeout time.Duration
}

func newRedisProber(opts Options) Prober {
	return &redisProber{timeout: opts.timeout()}
}

func (p *redisProber) Service() string     { return "redis" }
func (p *redisProber) DefaultPorts() []int { return []int{6379} }

func (p *redisProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["unauthenticated_access"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	pong, err := p.command(conn, "PING")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if strings.HasPrefix(pong, "-") {
		// An error reply is still a Redis server talking to us. NOAUTH or
		// ERR AUTH means requirepass is set and the probe stops here.
		res.Detected = true
		res.Findings["auth_reply"] = strings.TrimSpace(pong)
		return res
	}
	if !strings.HasPrefix(pong, "+PONG") {
		res.fail(KindProtocol, errUnexpectedReply(pong))
		return res
	}
	res.Detected = true
	res.Findings["unauthenticated_access"] = true

	if info, err := p.command(conn, "INFO"); err == nil {
		fields := parseRedisInfo(info)
		res.Findings["version"] = fields["redis_version"]
		res.Findings["role"] = fields["role"]
		res.Findings["os"] = fields["os"]
	}
	if reply, err := p.command(conn, "CONFIG GET dir"); err == nil {
		if vals := parseRESPStrings(reply); len(vals) == 2 {
			res.Findings["config_dir"] = vals[1]
		}
	}
	if reply, err := p.command(conn, "CONFIG GET requirepass"); err == nil {
		if vals := parseRESPStrings(reply); len(vals) == 2 {
			res.Findings["requirepass_set"] = vals[1] != ""
		}
	}
	if reply, err := p.command(conn, "DBSIZE"); err == nil {
		res.Findings["dbsize"] = strings.TrimSpace(strings.TrimPrefix(reply, ":"))
	}
	return res
}

func (p *redisProber) command(conn net.Conn, cmd string) (string, error) {
	if err := writeAll(conn, []byte(cmd+"\r\n"), p.timeout); err != nil {
		return "", err
	}
	raw, err := readSome(conn, 65536, p.timeout)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

type errUnexpectedReply string

func (e errUnexpectedReply) Error() string {
	return "unexpected reply: " + truncate(strings.TrimSpace(string(e)), 64)
}

// parseRedisInfo extracts key:value lines from an INFO bulk reply.
func parseRedisInfo(reply string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "$") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			out[k] = v
		}
	}
	return out
}

// parseRESPStrings pulls the payload lines out of a RESP array of bulk
// strings, skipping the *N and $len framing lines.
func parseRESPStrings(reply string) []string {
	var out []string
	expect := false
	for _, line := range strings.Split(reply, "\r\n") {
		switch {
		case strings.HasPrefix(line, "*"):
		case strings.HasPrefix(line, "$"):
			expect = true
		case expect:
			out = append(out, line)
			expect = false
		}
	}
	return out
}
