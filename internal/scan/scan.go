// Package scan runs nmap through its library wrapper and feeds the
// results straight into the report writers.
package scan

import (
	"context"
	"fmt"

	"github.com/Ullaakut/nmap/v3"
	"github.com/charmbracelet/log"

	"github.com/sam1101-sys/reconkit/internal/report"
)

// Options configures one live scan.
type Options struct {
	// Ports is an nmap port expression ("22,80,443" or "1-1024").
	// Empty lets nmap use its default port set.
	Ports string
	// ServiceDetection adds -sV.
	ServiceDetection bool
}

// Run scans the targets and returns hosts in the report package's
// normalized shape. The nmap binary must be on PATH; the library
// surfaces its absence as an error.
func Run(ctx context.Context, targets []string, opts Options) ([]report.Host, error) {
	scanOpts := []nmap.Option{
		nmap.WithTargets(targets...),
	}
	if opts.Ports != "" {
		scanOpts = append(scanOpts, nmap.WithPorts(opts.Ports))
	}
	if opts.ServiceDetection {
		scanOpts = append(scanOpts, nmap.WithServiceInfo())
	}

	scanner, err := nmap.NewScanner(ctx, scanOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if warnings != nil {
		for _, w := range *warnings {
			log.Warn("nmap warning", "warning", w)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("running nmap: %w", err)
	}

	return convert(result), nil
}

func convert(result *nmap.Run) []report.Host {
	var hosts []report.Host
	for _, h := range result.Hosts {
		if h.Status.State != "up" || len(h.Addresses) == 0 {
			continue
		}
		host := report.Host{IP: h.Addresses[0].Addr}
		for _, name := range h.Hostnames {
			if name.Type == "PTR" || host.Hostname == "" {
				host.Hostname = name.Name
			}
		}
		for _, p := range h.Ports {
			if p.State.State != "open" {
				continue
			}
			host.Ports = append(host.Ports, report.Port{
				Number:   int(p.ID),
				Protocol: p.Protocol,
				State:    p.State.State,
				Service:  p.Service.Name,
				Product:  p.Service.Product,
				Version:  p.Service.Version,
			})
		}
		hosts = append(hosts, host)
	}
	return hosts
}
