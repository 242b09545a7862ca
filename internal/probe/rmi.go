package probe

import (
	"bytes"
	"context"
	"time"
)

// rmiProber sends the JRMI magic plus stream-protocol byte and treats any
// reply as a possible registry. JMX commonly rides on RMI and leaves its
// class names in the handshake response.
type rmiProber struct {
	timeout time.Duration
}

func newRMIProber(opts Options) Prober {
	return &rmiProber{timeout: opts.timeout()}
}

func (p *rmiProber) Service() string { return "rmi" }
func (p *rmiProber) DefaultPorts() []int {
	return []int{1099, 1100, 8008, 4444, 33333}
}

func (p *rmiProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["possible_registry"] = false
	res.Findings["jmx_detected"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	// Some endpoints volunteer bytes before any handshake.
	if data, err := readSome(conn, 1024, p.timeout/2); err == nil && bytes.Contains(data, []byte("JRMI")) {
		res.Detected = true
	}

	// JRMI magic, version 2, StreamProtocol.
	if err := writeAll(conn, []byte{0x4a, 0x52, 0x4d, 0x49, 0x00, 0x02, 0x4b}, p.timeout); err != nil {
		return res
	}
	reply, err := readSome(conn, 1024, p.timeout)
	if err != nil || len(reply) == 0 {
		return res
	}

	res.Detected = true
	res.Findings["possible_registry"] = true
	if bytes.Contains(reply, []byte("javax.management")) || bytes.Contains(bytes.ToLower(reply), []byte("jmx")) {
		res.Findings["jmx_detected"] = true
	}
	return res
}
