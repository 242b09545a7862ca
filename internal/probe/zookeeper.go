package probe

import (
	"context"
	"strings"
	"time"
)

// zookeeperProber issues the classic four-letter admin commands and reads
// version and mode out of the stat/envi responses.
type zookeeperProber struct {
	timeout time.Duration
}

func newZookeeperProber(opts Options) Prober {
	return &zookeeperProber{timeout: opts.timeout()}
}

func (p *zookeeperProber) Service() string     { return "zookeeper" }
func (p *zookeeperProber) DefaultPorts() []int { return []int{2181} }

func (p *zookeeperProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	fourLetter := map[string]any{}
	responses := map[string]string{}
	for _, cmd := range []string{"ruok", "stat", "envi"} {
		raw, err := exchange(ctx, target, port, p.timeout, []byte(cmd), 4096)
		if err != nil {
			fourLetter[cmd] = map[string]any{"ok": false, "response": nil, "error": err.Error()}
			continue
		}
		text := string(raw)
		responses[cmd] = text
		fourLetter[cmd] = map[string]any{"ok": true, "response": text, "error": nil}
	}
	res.Findings["four_letter"] = fourLetter

	ruok := strings.ToLower(responses["ruok"])
	stat := responses["stat"]
	envi := responses["envi"]
	if strings.Contains(ruok, "imok") ||
		strings.Contains(strings.ToLower(stat), "zookeeper") ||
		strings.Contains(strings.ToLower(envi), "zookeeper") {
		res.Detected = true
	}

	for _, line := range strings.Split(stat+"\n"+envi, "\n") {
		low := strings.ToLower(line)
		if strings.Contains(low, "zookeeper version") {
			if _, v, ok := strings.Cut(line, ":"); ok {
				res.Findings["version"] = strings.TrimSpace(v)
			}
		}
		if strings.HasPrefix(low, "mode:") {
			res.Findings["mode"] = strings.TrimSpace(line[len("mode:"):])
		}
	}
	return res
}
