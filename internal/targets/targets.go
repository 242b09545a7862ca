// Package targets reads host lists from disk. One entry per line, either a
// bare host or host:port; blank lines and # comments are ignored, malformed
// lines are skipped with a warning so one typo never kills a run.
package targets

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// InputError marks a problem with the input file itself (missing or
// unreadable). Per-line problems are warnings, not errors; a file with
// no usable entries yields an empty slice.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("target file %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Target is one host to probe, optionally with an explicit port that
// overrides the service default.
type Target struct {
	Host string
	Port int
}

// ReadFile parses a target file. The returned slice preserves input
// order, including duplicates; callers that need dedup do it themselves.
func ReadFile(path string) ([]Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer f.Close()

	var out []Target
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := Parse(line)
		if err != nil {
			log.Warn("skipping malformed target", "file", path, "line", lineNo, "entry", line, "error", err)
			continue
		}
		out = append(out, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	if len(out) == 0 {
		log.Info("no usable targets in file", "file", path)
	}
	return out, nil
}

// Parse accepts "host" or "host:port" where host is an IP or hostname.
func Parse(entry string) (Target, error) {
	host, port := entry, 0
	if h, p, err := net.SplitHostPort(entry); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return Target{}, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}
	if !validHost(host) {
		return Target{}, fmt.Errorf("invalid host %q", host)
	}
	return Target{Host: host, Port: port}, nil
}

func validHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	// Loose hostname check: labels of letters, digits and hyphens.
	for _, label := range strings.Split(host, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !(r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return false
			}
		}
	}
	return true
}

// Hosts flattens the targets to bare host strings.
func Hosts(ts []Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Host
	}
	return out
}
