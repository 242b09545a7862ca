package probe

import (
	"context"
	"regexp"
	"strings"
	"time"
)

var mqVersionRe = regexp.MustCompile(`(?i)version[ :]+([0-9][0-9.]*)`)

// ibmmqProber reads any immediate listener text, then sends a harmless
// probe line and looks for the channel-negotiation error text an MQ
// listener returns to non-MQ clients.
type ibmmqProber struct {
	timeout time.Duration
}

func newIBMMQProber(opts Options) Prober {
	return &ibmmqProber{timeout: opts.timeout()}
}

func (p *ibmmqProber) Service() string     { return "ibm_mq" }
func (p *ibmmqProber) DefaultPorts() []int { return []int{1414} }

func (p *ibmmqProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	// Passive read in case the listener speaks first.
	var text string
	if banner, err := readSome(conn, 2048, p.timeout/2); err == nil {
		text = string(banner)
	}

	if err := writeAll(conn, []byte("AMQPROBE\r\n"), p.timeout); err == nil {
		if reply, err := readSome(conn, 2048, p.timeout); err == nil {
			text += string(reply)
		}
	}

	low := strings.ToLower(text)
	if strings.Contains(text, "AMQ") || strings.Contains(low, "websphere") || strings.Contains(low, "mqseries") {
		res.Detected = true
	}
	if text != "" {
		res.Findings["banner"] = truncate(text, 2000)
		if m := mqVersionRe.FindStringSubmatch(text); m != nil {
			res.Findings["version"] = m[1]
		}
	}
	return res
}
