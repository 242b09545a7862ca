package probe

import (
	"context"
	"encoding/binary"
	"time"
	"unicode"
)

// kerberosProber sends a length-prefixed junk request to the KDC port.
// A real KDC answers with a KRB-ERROR (ASN.1 application tag 30, first
// byte 0x7e) that carries the realm in a printable string. Username
// enumeration and AS-REP roasting need full AS-REQ construction and are
// out of scope for a single-exchange probe.
type kerberosProber struct {
	timeout time.Duration
}

func newKerberosProber(opts Options) Prober {
	return &kerberosProber{timeout: opts.timeout()}
}

func (p *kerberosProber) Service() string     { return "kerberos" }
func (p *kerberosProber) DefaultPorts() []int { return []int{88} }

func (p *kerberosProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload, 4)
	copy(payload[4:], []byte{0x00, 0x01, 0x02, 0x03})

	reply, err := exchange(ctx, target, port, p.timeout, payload, 4096)
	if err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true
	if len(reply) < 5 {
		return res
	}

	// Strip the 4-byte TCP length prefix before looking at the ASN.1 tag.
	body := reply[4:]
	if body[0] == 0x7e {
		res.Detected = true
		if realm := longestPrintableRun(body); len(realm) >= 3 {
			res.Findings["realm_hint"] = realm
		}
	}
	return res
}

// longestPrintableRun returns the longest run of printable ASCII in b,
// which in a KRB-ERROR is almost always the realm name.
func longestPrintableRun(b []byte) string {
	var best, cur []byte
	for _, c := range b {
		if c < 128 && (unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)) || c == '.' || c == '-') {
			cur = append(cur, c)
			continue
		}
		if len(cur) > len(best) {
			best = cur
		}
		cur = nil
	}
	if len(cur) > len(best) {
		best = cur
	}
	return string(best)
}
