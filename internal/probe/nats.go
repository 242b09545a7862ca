package probe

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// natsProber reads the INFO greeting, sends a PING and checks for PONG.
// Everything in the INFO document is advertised pre-auth by the server.
type natsProber struct {
	timeout time.Duration
}

func newNATSProber(opts Options) Prober {
	return &natsProber{timeout: opts.timeout()}
}

func (p *natsProber) Service() string     { return "nats" }
func (p *natsProber) DefaultPorts() []int { return []int{4222} }

func (p *natsProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	greeting, err := readSome(conn, 4096, p.timeout)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}

	line := strings.TrimSpace(string(greeting))
	res.Findings["initial_line"] = truncate(line, 1000)

	if strings.HasPrefix(line, "INFO ") {
		res.Detected = true
		var info map[string]any
		if err := json.Unmarshal([]byte(strings.SplitN(line[len("INFO "):], "\r\n", 2)[0]), &info); err == nil {
			res.Findings["version"] = info["version"]
			res.Findings["server_name"] = info["server_name"]
			res.Findings["cluster"] = info["cluster"]
			res.Findings["features"] = map[string]any{
				"headers":       info["headers"],
				"jetstream":     info["jetstream"],
				"tls_required":  info["tls_required"],
				"auth_required": info["auth_required"],
				"max_payload":   info["max_payload"],
			}
		}
	}

	pong := false
	if err := writeAll(conn, []byte("PING\r\n"), p.timeout); err == nil {
		if reply, err := readSome(conn, 64, p.timeout); err == nil {
			pong = strings.HasPrefix(strings.TrimSpace(string(reply)), "PONG")
		}
	}
	res.Findings["pong_received"] = pong
	if pong {
		res.Detected = true
	}
	return res
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
