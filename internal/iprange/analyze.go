package iprange

import (
	"fmt"
	"sort"
	"strings"
)

// Analysis is the result of comparing the expanded address sets of two
// or more sources.
type Analysis struct {
	// Unique maps each source label to the addresses found only there.
	Unique map[string][]string
	// Common maps a combination key (source labels joined by "+") to
	// the addresses shared by exactly that combination.
	Common map[string][]string
	// Totals maps each source label to its expanded address count.
	Totals map[string]int
}

// Analyze expands each source and partitions the address universe by
// which sources it appears in. Addresses in exactly one source land in
// Unique; addresses in two or more land in Common under their
// combination key.
func Analyze(sources []FileBlocks) (*Analysis, error) {
	membership := map[string][]string{} // ip -> source labels, in source order
	totals := map[string]int{}
	for _, src := range sources {
		ips, err := Expand(src.Blocks)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", src.Label, err)
		}
		totals[src.Label] = len(ips)
		for _, ip := range ips {
			membership[ip] = append(membership[ip], src.Label)
		}
	}

	out := &Analysis{
		Unique: map[string][]string{},
		Common: map[string][]string{},
		Totals: totals,
	}
	for ip, labels := range membership {
		if len(labels) == 1 {
			out.Unique[labels[0]] = append(out.Unique[labels[0]], ip)
			continue
		}
		key := strings.Join(labels, "+")
		out.Common[key] = append(out.Common[key], ip)
	}
	for _, ips := range out.Unique {
		sortIPs(ips)
	}
	for _, ips := range out.Common {
		sortIPs(ips)
	}
	return out, nil
}

// ComboFileName turns a combination key into the output file name used
// for shared addresses, e.g. "scope1+scope2" -> "CommonInScope1Scope2.txt".
func ComboFileName(combo string) string {
	var b strings.Builder
	b.WriteString("CommonIn")
	for _, label := range strings.Split(combo, "+") {
		b.WriteString(titleWord(sanitizeLabel(label)))
	}
	b.WriteString(".txt")
	return b.String()
}

// UniqueFileName names the per-source unique-address output file.
func UniqueFileName(label string) string {
	return sanitizeLabel(label) + "_unique_ips.txt"
}

func sanitizeLabel(label string) string {
	label = strings.TrimSuffix(label, ".txt")
	if i := strings.LastIndexAny(label, "/\\"); i >= 0 {
		label = label[i+1:]
	}
	return label
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortIPs(ips []string) {
	sort.Slice(ips, func(i, j int) bool {
		return ipLess(ips[i], ips[j])
	})
}

// ipLess orders dotted-quad addresses numerically, falling back to
// string order for anything else.
func ipLess(a, b string) bool {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	if len(pa) != 4 || len(pb) != 4 {
		return a < b
	}
	for i := 0; i < 4; i++ {
		if len(pa[i]) != len(pb[i]) {
			return len(pa[i]) < len(pb[i])
		}
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	return false
}
