package probe

import (
	"context"
	"strings"
	"time"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

// nfsProber checks TCP reachability of nfsd and enumerates exports through
// showmount -e, the same collaborator the original script shells out to.
type nfsProber struct {
	timeout time.Duration
	exec    execx.Runner
}

func newNFSProber(opts Options) Prober {
	return &nfsProber{timeout: opts.timeout(), exec: execx.NewSystemRunner()}
}

// NewNFSProberWithRunner injects the process runner, for tests.
func NewNFSProberWithRunner(opts Options, r execx.Runner) Prober {
	return &nfsProber{timeout: opts.timeout(), exec: r}
}

func (p *nfsProber) Service() string        { return "nfs" }
func (p *nfsProber) DefaultPorts() []int    { return []int{2049} }
func (p *nfsProber) RequiredBinary() string { return "showmount" }

func (p *nfsProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["exports_found"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true
	res.Detected = true

	out, err := p.exec.Run(ctx, p.timeout, "showmount", "-e", target)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if out.ExitCode != 0 {
		res.Findings["showmount_error"] = strings.TrimSpace(out.Stderr)
		return res
	}

	exports := parseExports(out.Stdout)
	if len(exports) > 0 {
		res.Findings["exports_found"] = true
		res.Findings["exports"] = exports
	}
	return res
}

// parseExports reads `showmount -e` output lines of the form
// "/export host1,host2" into structured entries, skipping the header.
func parseExports(output string) []map[string]any {
	var exports []map[string]any
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") {
			continue
		}
		parts := strings.Fields(line)
		entry := map[string]any{"export": parts[0], "allowed_hosts": []string{}}
		if len(parts) > 1 {
			entry["allowed_hosts"] = strings.Split(parts[1], ",")
		}
		exports = append(exports, entry)
	}
	return exports
}
