package iprange

import (
	"net"
	"regexp"
	"strings"
)

var ipv4TokenRe = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?:/\d{1,2})?\b`)

// Extract pulls IPv4 addresses and CIDR blocks out of arbitrary text
// (logs, reports, pasted scope documents). Tokens that look like an
// address but do not parse are dropped; results are deduplicated in
// first-seen order.
func Extract(text string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, token := range ipv4TokenRe.FindAllString(text, -1) {
		if strings.Contains(token, "/") {
			if _, _, err := net.ParseCIDR(token); err != nil {
				continue
			}
		} else if net.ParseIP(token) == nil {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
