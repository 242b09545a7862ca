package probe

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const telnetIAC = 0xff

// telnetProber grabs the login banner and captures the IAC option
// negotiation the server volunteers on connect. No credentials are ever
// sent; NTLM support is inferred from the negotiation bytes.
type telnetProber struct {
	timeout time.Duration
}

func newTelnetProber(opts Options) Prober {
	return &telnetProber{timeout: opts.timeout()}
}

func (p *telnetProber) Service() string     { return "telnet" }
func (p *telnetProber) DefaultPorts() []int { return []int{23} }

func (p *telnetProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	raw, err := grabBanner(ctx, target, port, p.timeout, 1024)
	if err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true
	if len(raw) == 0 {
		return res
	}
	res.Detected = true

	// Split negotiation bytes from printable banner text.
	var options []string
	var banner []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == telnetIAC && i+2 < len(raw) {
			options = append(options, fmt.Sprintf("%02x:%02x", raw[i+1], raw[i+2]))
			i += 2
			continue
		}
		banner = append(banner, raw[i])
	}

	if text := strings.TrimSpace(string(banner)); text != "" {
		res.Findings["banner"] = text
	}
	if len(options) > 0 {
		res.Findings["negotiate"] = map[string]any{
			"raw":     hex.EncodeToString(raw),
			"options": options,
		}
	}
	if strings.Contains(strings.ToUpper(hex.EncodeToString(raw)), "4E544C4D53535000") {
		res.Findings["ntlm_info"] = "NTLM negotiation detected"
	}
	return res
}
