package probe

import (
	"context"
	"strings"
	"time"
)

// winrmProber requests /wsman and reads the offered authentication schemes
// out of the WWW-Authenticate header. 5986 is probed over TLS.
type winrmProber struct {
	timeout time.Duration
}

func newWinRMProber(opts Options) Prober {
	return &winrmProber{timeout: opts.timeout()}
}

func (p *winrmProber) Service() string     { return "winrm" }
func (p *winrmProber) DefaultPorts() []int { return []int{5985, 5986} }

func (p *winrmProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["wsman_endpoint"] = false
	res.Findings["ntlm_supported"] = false
	res.Findings["basic_supported"] = false
	res.Findings["kerberos_supported"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	scheme := "http"
	if port == 5986 {
		scheme = "https"
	}

	resp, err := httpGet(ctx, httpClient(p.timeout), scheme, target, port, "/wsman")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}

	res.Findings["http_status"] = resp.StatusCode
	if server := resp.Headers.Get("Server"); server != "" {
		res.Findings["server_header"] = server
	}
	if resp.StatusCode == 200 || resp.StatusCode == 401 || resp.StatusCode == 405 {
		res.Detected = true
		res.Findings["wsman_endpoint"] = true
	}

	var methods []string
	for _, h := range resp.Headers.Values("Www-Authenticate") {
		for _, m := range strings.Split(h, ",") {
			method := strings.TrimSpace(m)
			if method == "" {
				continue
			}
			methods = append(methods, method)
			up := strings.ToUpper(method)
			if strings.Contains(up, "NTLM") {
				res.Findings["ntlm_supported"] = true
			}
			if strings.Contains(up, "BASIC") {
				res.Findings["basic_supported"] = true
			}
			if strings.Contains(up, "KERBEROS") || strings.Contains(up, "NEGOTIATE") {
				res.Findings["kerberos_supported"] = true
			}
		}
	}
	if len(methods) > 0 {
		res.Findings["auth_methods"] = methods
	}
	return res
}
