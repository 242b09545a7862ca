package probe

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// vncProber completes the RFB version exchange and reads the advertised
// security types. Type 1 (None) means the desktop is open.
type vncProber struct {
	timeout time.Duration
}

func newVNCProber(opts Options) Prober {
	return &vncProber{timeout: opts.timeout()}
}

func (p *vncProber) Service() string     { return "vnc" }
func (p *vncProber) DefaultPorts() []int { return []int{5800, 5801, 5900, 5901} }

func (p *vncProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["no_auth"] = false
	res.Findings["vnc_auth_supported"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	banner, err := readSome(conn, 12, p.timeout)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if !bytes.HasPrefix(banner, []byte("RFB")) {
		return res
	}
	res.Detected = true
	res.Findings["rfb_version"] = strings.TrimSpace(string(banner))

	// Echo the server's version back to continue the handshake.
	if err := writeAll(conn, banner, p.timeout); err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	secTypes, err := readSome(conn, 1024, p.timeout)
	if err != nil || len(secTypes) == 0 {
		return res
	}

	count := int(secTypes[0])
	if count == 0 {
		res.fail(KindProtocol, errUnexpectedReply("no security types offered"))
		return res
	}
	if count > len(secTypes)-1 {
		count = len(secTypes) - 1
	}

	methods := make([]int, 0, count)
	for _, t := range secTypes[1 : 1+count] {
		methods = append(methods, int(t))
		switch t {
		case 1:
			res.Findings["no_auth"] = true
		case 2:
			res.Findings["vnc_auth_supported"] = true
		}
	}
	res.Findings["auth_methods"] = methods
	return res
}
