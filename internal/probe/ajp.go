package probe

import (
	"bytes"
	"context"
	"encoding/hex"
	"time"
)

// ajpCPing is a client CPing packet; a live AJP connector replies CPong
// (0x41 0x42 0x00 0x01 0x09) without touching any backend application.
var (
	ajpCPing = []byte{0x12, 0x34, 0x00, 0x01, 0x0a}
	ajpCPong = []byte{0x41, 0x42, 0x00, 0x01, 0x09}
)

type ajpProber struct {
	timeout time.Duration
}

func newAJPProber(opts Options) Prober {
	return &ajpProber{timeout: opts.timeout()}
}

func (p *ajpProber) Service() string     { return "ajp" }
func (p *ajpProber) DefaultPorts() []int { return []int{8009} }

func (p *ajpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["cpong_received"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	reply, err := exchange(ctx, target, port, p.timeout, ajpCPing, 16)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	res.Findings["raw_response_hex"] = hex.EncodeToString(reply)
	if bytes.HasPrefix(reply, ajpCPong) {
		res.Detected = true
		res.Findings["cpong_received"] = true
	}
	return res
}
