package netinfo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const hostsFilePath = "/etc/hosts"

// HostMappings parses the hosts file into hostname -> IP mappings. A
// hostname may carry several IPs; duplicates for the same hostname are
// collapsed.
func (d *discoverer) HostMappings(ctx context.Context) (map[string][]string, error) {
	f, err := os.Open(d.hostsPath)
	if err != nil {
		return nil, fmt.Errorf("opening hosts file %s: %w", d.hostsPath, err)
	}
	defer f.Close()
	return parseHosts(f)
}

// parseHosts handles the "IP hostname [hostname ...]" format with #
// comments, including inline ones. Malformed lines are skipped.
func parseHosts(r io.Reader) (map[string][]string, error) {
	mappings := map[string][]string{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			log.Debug("skipping hosts line", "line", lineNo, "reason", "not enough fields")
			continue
		}
		if net.ParseIP(fields[0]) == nil {
			log.Debug("skipping hosts line", "line", lineNo, "reason", "invalid IP", "value", fields[0])
			continue
		}
		ip := fields[0]
		for _, hostname := range fields[1:] {
			if !containsString(mappings[hostname], ip) {
				mappings[hostname] = append(mappings[hostname], ip)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hosts file: %w", err)
	}
	return mappings, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
