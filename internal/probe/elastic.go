package probe

import (
	"context"
	"encoding/json"
	"time"
)

// elasticProber hits the unauthenticated REST surface: root info, X-Pack
// security status, a bounded index listing and snapshot repositories.
type elasticProber struct {
	timeout time.Duration
}

func newElasticProber(opts Options) Prober {
	return &elasticProber{timeout: opts.timeout()}
}

func (p *elasticProber) Service() string     { return "elasticsearch" }
func (p *elasticProber) DefaultPorts() []int { return []int{9200} }

func (p *elasticProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["unauthenticated_access"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	client := httpClient(p.timeout)

	root, err := httpGet(ctx, client, "http", target, port, "/")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if root.StatusCode == 401 {
		res.Detected = true
		return res
	}
	if root.StatusCode != 200 {
		return res
	}
	data := decodeJSONBody(root.Body)
	if data == nil {
		return res
	}

	res.Detected = true
	res.Findings["unauthenticated_access"] = true
	res.Findings["cluster_name"] = data["cluster_name"]
	res.Findings["node_name"] = data["name"]
	if v, ok := data["version"].(map[string]any); ok {
		res.Findings["version"] = v["number"]
	}

	if xpack, err := httpGet(ctx, client, "http", target, port, "/_xpack"); err == nil && xpack.StatusCode == 200 {
		if data := decodeJSONBody(xpack.Body); data != nil {
			if features, ok := data["features"].(map[string]any); ok {
				if sec, ok := features["security"].(map[string]any); ok {
					res.Findings["security_enabled"] = sec["enabled"]
				}
			}
		}
	}

	if cat, err := httpGet(ctx, client, "http", target, port, "/_cat/indices?format=json"); err == nil && cat.StatusCode == 200 {
		var indices []map[string]any
		if json.Unmarshal([]byte(cat.Body), &indices) == nil {
			sample := make([]map[string]any, 0, 10)
			for i, idx := range indices {
				if i == 10 {
					break
				}
				sample = append(sample, map[string]any{
					"index": idx["index"],
					"docs":  idx["docs.count"],
				})
			}
			res.Findings["indices"] = sample
		}
	}

	if snap, err := httpGet(ctx, client, "http", target, port, "/_snapshot"); err == nil && snap.StatusCode == 200 {
		if repos := decodeJSONBody(snap.Body); repos != nil {
			names := make([]string, 0, len(repos))
			for name := range repos {
				names = append(names, name)
			}
			res.Findings["snapshot_repositories"] = names
		}
	}
	return res
}
