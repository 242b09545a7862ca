package probe

import (
	"bytes"
	"context"
	"encoding/hex"
	"time"
)

var jdwpHandshake = []byte("JDWP-Handshake")

// jdwpVersionPacket is a minimal VirtualMachine/Version command:
// length(4) id(4) flags(1) cmdset(1) cmd(1).
var jdwpVersionPacket = []byte{
	0x00, 0x00, 0x00, 0x0b,
	0x00, 0x00, 0x00, 0x01,
	0x00,
	0x01,
	0x01,
}

// jdwpProber performs the plaintext JDWP handshake. An echoed handshake
// means an unauthenticated debug port, which is a finding on its own.
type jdwpProber struct {
	timeout time.Duration
}

func newJDWPProber(opts Options) Prober {
	return &jdwpProber{timeout: opts.timeout()}
}

func (p *jdwpProber) Service() string     { return "jdwp" }
func (p *jdwpProber) DefaultPorts() []int { return []int{5005, 8000, 8787} }

func (p *jdwpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["jdwp_exposed"] = false

	conn, err := dialTCP(ctx, target, port, p.timeout)
	if err != nil {
		res.failDial(err)
		return res
	}
	defer conn.Close()
	res.Reachable = true

	if err := writeAll(conn, jdwpHandshake, p.timeout); err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	reply, err := readSome(conn, 1024, p.timeout)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if !bytes.Equal(reply, jdwpHandshake) {
		return res
	}

	res.Detected = true
	res.Findings["jdwp_exposed"] = true

	if err := writeAll(conn, jdwpVersionPacket, p.timeout); err == nil {
		if vm, err := readSome(conn, 1024, p.timeout); err == nil {
			res.Findings["vm_version_response"] = hex.EncodeToString(vm)
		}
	}
	return res
}
