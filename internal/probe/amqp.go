package probe

import (
	"context"
	"encoding/hex"
	"time"
)

// amqpHeader is the AMQP 0-9-1 protocol header. A broker answers it with a
// Connection.Start frame; anything else on the wire is not AMQP.
var amqpHeader = []byte("AMQP\x00\x00\x09\x01")

type amqpProber struct {
	timeout time.Duration
}

func newAMQPProber(opts Options) Prober {
	return &amqpProber{timeout: opts.timeout()}
}

func (p *amqpProber) Service() string     { return "amqp" }
func (p *amqpProber) DefaultPorts() []int { return []int{5672} }

func (p *amqpProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["protocol_header_accepted"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	reply, err := exchange(ctx, target, port, p.timeout, amqpHeader, 64)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if len(reply) > 0 {
		res.Detected = true
		res.Findings["protocol_header_accepted"] = true
		res.Findings["response_hex"] = hex.EncodeToString(reply)
	}
	return res
}
