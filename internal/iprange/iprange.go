// Package iprange implements the CIDR and IP-range utilities: expansion to
// individual addresses, overlap detection between files, BETWEEN-clause
// query generation and multi-source set analysis.
package iprange

import (
	"bufio"
	"fmt"
	"math/big"
	"net"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/projectdiscovery/mapcidr"
)

// Block is one parsed input line: a CIDR, a bare IP, or an a-b range,
// normalized to first/last addresses plus the covering CIDRs.
type Block struct {
	Source string // the input text, as written
	First  net.IP
	Last   net.IP
	Nets   []*net.IPNet
}

// ParseLine accepts "10.0.0.0/24", "10.0.0.5" or "10.0.0.1-10.0.0.50".
func ParseLine(line string) (Block, error) {
	line = strings.TrimSpace(line)
	switch {
	case strings.Contains(line, "/"):
		_, network, err := net.ParseCIDR(line)
		if err != nil {
			return Block{}, fmt.Errorf("invalid CIDR %q: %w", line, err)
		}
		first, last := cidrBounds(network)
		return Block{Source: line, First: first, Last: last, Nets: []*net.IPNet{network}}, nil
	case strings.Contains(line, "-"):
		parts := strings.SplitN(line, "-", 2)
		first := net.ParseIP(strings.TrimSpace(parts[0]))
		last := net.ParseIP(strings.TrimSpace(parts[1]))
		if first == nil || last == nil {
			return Block{}, fmt.Errorf("invalid range %q", line)
		}
		nets, err := mapcidr.GetCIDRFromIPRange(first, last)
		if err != nil {
			return Block{}, fmt.Errorf("invalid range %q: %w", line, err)
		}
		return Block{Source: line, First: first, Last: last, Nets: nets}, nil
	default:
		ip := net.ParseIP(line)
		if ip == nil {
			return Block{}, fmt.Errorf("invalid address %q", line)
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		network := &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
		return Block{Source: line, First: ip, Last: ip, Nets: []*net.IPNet{network}}, nil
	}
}

// ReadBlocks parses a file of CIDR/range lines. Malformed lines are
// skipped with a warning, matching target ingestion.
func ReadBlocks(path string) ([]Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var blocks []Block
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := ParseLine(line)
		if err != nil {
			log.Warn("skipping line", "file", path, "line", lineNo, "error", err)
			continue
		}
		blocks = append(blocks, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return blocks, nil
}

// Expand flattens blocks to individual addresses, deduplicated, in
// first-seen order.
func Expand(blocks []Block) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, b := range blocks {
		for _, network := range b.Nets {
			stream, err := mapcidr.IPAddressesAsStream(network.String())
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", network, err)
			}
			for ip := range stream {
				if _, dup := seen[ip]; dup {
					continue
				}
				seen[ip] = struct{}{}
				out = append(out, ip)
			}
		}
	}
	return out, nil
}

// cidrBounds returns the first and last address of a network.
func cidrBounds(network *net.IPNet) (net.IP, net.IP) {
	firstInt, bits, _ := mapcidr.IPToInteger(network.IP)
	ones, _ := network.Mask.Size()
	size := big.NewInt(0).Lsh(big.NewInt(1), uint(bits-ones))
	lastInt := big.NewInt(0).Add(firstInt, big.NewInt(0).Sub(size, big.NewInt(1)))
	return mapcidr.IntegerToIP(firstInt, bits), mapcidr.IntegerToIP(lastInt, bits)
}
