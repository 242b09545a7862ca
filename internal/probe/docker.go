package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// dockerAPIProber checks for an unauthenticated Docker Engine API: _ping,
// version, info and a container listing. Port 2376 is probed over TLS.
type dockerAPIProber struct {
	timeout time.Duration
}

func newDockerAPIProber(opts Options) Prober {
	return &dockerAPIProber{timeout: opts.timeout()}
}

func (p *dockerAPIProber) Service() string     { return "docker_api" }
func (p *dockerAPIProber) DefaultPorts() []int { return []int{2375, 2376} }

func (p *dockerAPIProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["api_accessible"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	scheme := "http"
	if port == 2376 {
		scheme = "https"
	}
	res.Findings["protocol"] = scheme
	client := httpClient(p.timeout)

	ping, err := httpGet(ctx, client, scheme, target, port, "/_ping")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if ping.StatusCode != 200 {
		res.Findings["ping_status"] = ping.StatusCode
		return res
	}
	res.Detected = true
	res.Findings["api_accessible"] = true

	if ver, err := httpGet(ctx, client, scheme, target, port, "/version"); err == nil && ver.StatusCode == 200 {
		if data := decodeJSONBody(ver.Body); data != nil {
			res.Findings["version"] = data["Version"]
			res.Findings["api_version"] = data["ApiVersion"]
			res.Findings["git_commit"] = data["GitCommit"]
		}
	}
	if info, err := httpGet(ctx, client, scheme, target, port, "/info"); err == nil && info.StatusCode == 200 {
		if data := decodeJSONBody(info.Body); data != nil {
			res.Findings["docker_info"] = map[string]any{
				"name":               data["Name"],
				"os":                 data["OperatingSystem"],
				"containers_running": data["ContainersRunning"],
				"images":             data["Images"],
			}
		}
	}
	if list, err := httpGet(ctx, client, scheme, target, port, "/containers/json?all=1&limit=10"); err == nil && list.StatusCode == 200 {
		var containers []map[string]any
		if json.Unmarshal([]byte(list.Body), &containers) == nil {
			sample := make([]map[string]any, 0, len(containers))
			for _, c := range containers {
				sample = append(sample, map[string]any{
					"id":    c["Id"],
					"image": c["Image"],
					"state": c["State"],
					"names": c["Names"],
				})
			}
			res.Findings["containers"] = sample
		}
	}
	return res
}

const dockerRegistryMaxRepos = 25

// dockerRegistryProber checks the Distribution v2 API: catalog access
// without credentials plus a bounded tag listing per repository.
type dockerRegistryProber struct {
	timeout time.Duration
}

func newDockerRegistryProber(opts Options) Prober {
	return &dockerRegistryProber{timeout: opts.timeout()}
}

func (p *dockerRegistryProber) Service() string     { return "docker_registry" }
func (p *dockerRegistryProber) DefaultPorts() []int { return []int{5000} }

func (p *dockerRegistryProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)
	res.Findings["registry_api_available"] = false

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	client := httpClient(p.timeout)

	v2, err := httpGet(ctx, client, "http", target, port, "/v2/")
	if err != nil {
		res.fail(KindProtocol, err)
		return res
	}
	if v := v2.Headers.Get("Docker-Distribution-Api-Version"); v != "" {
		res.Detected = true
		res.Findings["distribution_api_version"] = v
	}
	if v2.StatusCode == 401 {
		res.Detected = true
		res.Findings["auth_challenge"] = v2.Headers.Get("Www-Authenticate")
		return res
	}
	if v2.StatusCode != 200 {
		return res
	}
	res.Detected = true
	res.Findings["registry_api_available"] = true

	catalog, err := httpGet(ctx, client, "http", target, port,
		fmt.Sprintf("/v2/_catalog?n=%d", dockerRegistryMaxRepos))
	if err != nil || catalog.StatusCode != 200 {
		return res
	}
	data := decodeJSONBody(catalog.Body)
	repos, _ := data["repositories"].([]any)

	var names []string
	tags := map[string]any{}
	for _, r := range repos {
		name, ok := r.(string)
		if !ok {
			continue
		}
		names = append(names, name)
		if resp, err := httpGet(ctx, client, "http", target, port, "/v2/"+name+"/tags/list"); err == nil && resp.StatusCode == 200 {
			if td := decodeJSONBody(resp.Body); td != nil {
				tags[name] = td["tags"]
			}
		}
	}
	res.Findings["catalog"] = names
	if len(tags) > 0 {
		res.Findings["tags"] = tags
	}
	return res
}
