package probe

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
)

// weblogicVersionRisk maps version patterns to the families and CVEs an
// operator will want to chase. Detection only looks at banners and console
// pages; no exploit traffic is ever sent.
var weblogicVersionRisk = []struct {
	pattern *regexp.Regexp
	family  string
	cves    []string
}{
	{regexp.MustCompile(`\b10\.3(?:\.\d+)?\b`), "10.3.x", []string{"CVE-2017-10271"}},
	{regexp.MustCompile(`\b12\.1(?:\.\d+)?\b`), "12.1.x", []string{"CVE-2017-10271"}},
	{regexp.MustCompile(`\b12\.2\.1\.3\b`), "12.2.1.3", []string{"CVE-2020-14882"}},
	{regexp.MustCompile(`\b12\.2\.1\.4\b`), "12.2.1.4", []string{"CVE-2020-14882", "CVE-2023-21839"}},
}

var weblogicVersionRe = regexp.MustCompile(`(?i)weblogic(?: server)?[ /:]*([0-9]+(?:\.[0-9]+)+)`)

var weblogicPaths = []string{"/console", "/console/login/LoginForm.jsp", "/wls-wsat/CoordinatorPortType"}

// weblogicProber combines a non-destructive T3 hello with console-path
// HTTP checks and flags versions with well-known CVE exposure.
type weblogicProber struct {
	timeout time.Duration
}

func newWebLogicProber(opts Options) Prober {
	return &weblogicProber{timeout: opts.timeout()}
}

func (p *weblogicProber) Service() string { return "weblogic" }
func (p *weblogicProber) DefaultPorts() []int {
	return []int{7001, 7002, 8001, 9001, 80, 443}
}

func (p *weblogicProber) Probe(ctx context.Context, target string, port int) Result {
	res := newResult(p.Service(), "tcp", target, port)

	if err := tcpCheck(ctx, target, port, p.timeout); err != nil {
		res.failDial(err)
		return res
	}
	res.Reachable = true

	// Standard T3 hello; no payloads, no deserialization traffic.
	if reply, err := exchange(ctx, target, port, p.timeout, []byte("t3 12.2.1\nAS:255\nHL:19\n\n"), 512); err == nil {
		banner := strings.TrimSpace(string(reply))
		upper := strings.ToUpper(banner)
		t3 := strings.Contains(upper, "HELO") || strings.Contains(upper, "T3") || strings.Contains(upper, "WEBLOGIC")
		res.Findings["t3_detected"] = t3
		if banner != "" {
			res.Findings["t3_banner"] = truncate(banner, 300)
		}
		if t3 {
			res.Detected = true
		}
	}

	scheme := "http"
	if port == 7002 || port == 443 {
		scheme = "https"
	}
	client := httpClient(p.timeout)

	var versionHints []string
	endpoints := map[string]any{}
	for _, path := range weblogicPaths {
		resp, err := httpGet(ctx, client, scheme, target, port, path)
		if err != nil {
			endpoints[path] = map[string]any{"reachable": false, "error": err.Error()}
			continue
		}
		title := extractTitleHint(resp.Body)
		exposed := resp.StatusCode == 200 ||
			(path == "/console" && (resp.StatusCode == 302 || resp.StatusCode == 301))
		endpoints[path] = map[string]any{
			"reachable":   true,
			"status_code": resp.StatusCode,
			"exposed":     exposed,
			"location":    resp.Headers.Get("Location"),
			"title_hint":  title,
		}
		if strings.Contains(strings.ToLower(resp.Body), "weblogic") || strings.Contains(strings.ToLower(title), "weblogic") {
			res.Detected = true
		}
		versionHints = append(versionHints, resp.Headers.Get("Server"), title, resp.Body)
	}
	res.Findings["endpoints"] = endpoints

	if version := parseWebLogicVersion(versionHints); version != "" {
		res.Findings["version"] = version
		res.Findings["version_risk"] = assessWebLogicRisk(version)
	}
	return res
}

func parseWebLogicVersion(hints []string) string {
	for _, h := range hints {
		if m := weblogicVersionRe.FindStringSubmatch(h); m != nil {
			return m[1]
		}
	}
	return ""
}

func assessWebLogicRisk(version string) map[string]any {
	var families, cves []string
	for _, rule := range weblogicVersionRisk {
		if rule.pattern.MatchString(version) {
			families = append(families, rule.family)
			cves = append(cves, rule.cves...)
		}
	}
	sort.Strings(families)
	sort.Strings(cves)
	return map[string]any{
		"potentially_vulnerable": len(families) > 0,
		"matched_families":       dedupeStrings(families),
		"notable_cves":           dedupeStrings(cves),
	}
}

func dedupeStrings(in []string) []string {
	out := in[:0]
	var last string
	for i, s := range in {
		if i == 0 || s != last {
			out = append(out, s)
		}
		last = s
	}
	return out
}
