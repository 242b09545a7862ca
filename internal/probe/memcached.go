package probe

import (
	"context"
	"strings"
	"time"
)

const memcachedReadLimit = 262144

// memcachedProber sends the read-only version/stats/stats slabs pipeline in
// one write and folds the STAT lines into findings.
type memcachedProber struct {
	timeout time.Duration
}

func newMemcachedProber(opts Options) Prober {
	return &memcachedProber{timeout: opts.timeout()}
}

func (p *memcachedProber) Service() string     { return "memcached" }
func (p *memcachedProber) DefaultPorts() []int { return []int{11211} }

func (p *memcachedProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	raw, err := exchange(ctx, target, port, p.timeout,
		[]byte("version\r\nstats\r\nstats slabs\r\nquit\r\n"), memcachedReadLimit)
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}

	text := string(raw)
	if strings.Contains(text, "VERSION ") || strings.Contains(text, "STAT ") {
		res.Detected = true
	}
	for _, line := range strings.Split(text, "\r\n") {
		if strings.HasPrefix(line, "VERSION ") {
			res.Findings["version"] = strings.TrimSpace(line[len("VERSION "):])
			break
		}
	}

	stats := parseStatLines(text)
	res.Findings["stats"] = stats
	res.Findings["slabs"] = groupSlabStats(stats)
	return res
}

// parseStatLines collects "STAT <key> <value...>" lines into a map.
func parseStatLines(text string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "STAT ") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 3 {
			out[parts[1]] = strings.Join(parts[2:], " ")
		}
	}
	return out
}

// groupSlabStats regroups "<id>:<key>" stat keys by slab id.
func groupSlabStats(stats map[string]string) map[string]map[string]string {
	slabs := map[string]map[string]string{}
	for key, value := range stats {
		id, rest, ok := strings.Cut(key, ":")
		if !ok || !isDigits(id) {
			continue
		}
		if slabs[id] == nil {
			slabs[id] = map[string]string{}
		}
		slabs[id][rest] = value
	}
	return slabs
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
