package probe

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"
)

// mqttProber sends clean-session CONNECT packets for protocol levels 4
// (MQTT 3.1.1) and 5 and records which the broker accepts. An accepted
// CONNACK with return code 0 means the broker allows anonymous clients.
type mqttProber struct {
	timeout time.Duration
}

func newMQTTProber(opts Options) Prober {
	return &mqttProber{timeout: opts.timeout()}
}

func (p *mqttProber) Service() string     { return "mqtt" }
func (p *mqttProber) DefaultPorts() []int { return []int{1883} }

func (p *mqttProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["anonymous_connect_allowed"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	levels := map[string]any{}
	for _, level := range []byte{4, 5} {
		probe := p.probeLevel(ctx, target, port, level)
		levels[fmt.Sprintf("level_%d", level)] = probe
		if accepted, _ := probe["accepted"].(bool); accepted {
			res.Detected = true
			res.Findings["anonymous_connect_allowed"] = true
		} else if probe["connack"] != nil {
			res.Detected = true
		}
	}
	res.Findings["protocol_levels"] = levels
	return res
}

func (p *mqttProber) probeLevel(ctx context.Context, target string, port int, level byte) map[string]any {
	out := map[string]any{"protocol_level": int(level), "accepted": false}

	reply, err := exchange(ctx, target, port, p.timeout, buildMQTTConnect(level), 8)
	if err != nil {
		out["error"] = err.Error()
		return out
	}
	if len(reply) < 4 || reply[0] != 0x20 {
		out["connack"] = hex.EncodeToString(reply)
		out["error"] = "unexpected_response"
		return out
	}

	out["connack"] = hex.EncodeToString(reply)
	out["session_present"] = reply[2]&0x01 != 0
	code := int(reply[3])
	if level == 5 {
		out["reason_code"] = code
	} else {
		out["return_code"] = code
	}
	out["accepted"] = code == 0
	return out
}

// buildMQTTConnect assembles a minimal CONNECT packet with a random client
// id and the clean-session flag set.
func buildMQTTConnect(protocolLevel byte) []byte {
	clientID := make([]byte, 8)
	for i := range clientID {
		clientID[i] = byte('a' + rand.Intn(26))
	}
	clientID = append([]byte("recon-"), clientID...)

	variable := append([]byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}, protocolLevel, 0x02, 0x00, 0x1e)
	payload := append([]byte{byte(len(clientID) >> 8), byte(len(clientID))}, clientID...)

	packet := []byte{0x10}
	packet = append(packet, encodeRemainingLength(len(variable)+len(payload))...)
	packet = append(packet, variable...)
	return append(packet, payload...)
}

// encodeRemainingLength implements MQTT's variable-length size encoding.
func encodeRemainingLength(v int) []byte {
	var out []byte
	for {
		digit := byte(v % 128)
		v /= 128
		if v > 0 {
			digit |= 0x80
		}
		out = append(out, digit)
		if v == 0 {
			return out
		}
	}
}
