// Package report converts nmap output (XML or grepable) into the
// spreadsheet and CSV formats handed to assessment write-ups.
package report

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Raw nmap XML shapes. Only the fields the reports consume are mapped.

type nmapRun struct {
	XMLName xml.Name   `xml:"nmaprun"`
	Hosts   []nmapHost `xml:"host"`
}

type nmapHost struct {
	Status    nmapStatus     `xml:"status"`
	Addresses []nmapAddress  `xml:"address"`
	Hostnames []nmapHostname `xml:"hostnames>hostname"`
	Ports     []nmapPort     `xml:"ports>port"`
}

type nmapStatus struct {
	State string `xml:"state,attr"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapHostname struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type nmapPort struct {
	Protocol string      `xml:"protocol,attr"`
	PortID   int         `xml:"portid,attr"`
	State    nmapState   `xml:"state"`
	Service  nmapService `xml:"service"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name    string `xml:"name,attr"`
	Product string `xml:"product,attr"`
	Version string `xml:"version,attr"`
}

// Host is one live host from a scan, normalized for the report writers.
type Host struct {
	IP       string
	Hostname string // PTR record when nmap resolved one
	Ports    []Port
}

// Port is one open port on a live host.
type Port struct {
	Number   int
	Protocol string
	State    string
	Service  string
	Product  string
	Version  string
}

// ParseXML reads nmap -oX output and keeps hosts that are up, with
// their open ports.
func ParseXML(r io.Reader) ([]Host, error) {
	var run nmapRun
	if err := xml.NewDecoder(r).Decode(&run); err != nil {
		return nil, fmt.Errorf("parsing nmap XML: %w", err)
	}

	var hosts []Host
	for _, h := range run.Hosts {
		if h.Status.State != "up" {
			continue
		}
		host := Host{}
		for _, addr := range h.Addresses {
			if addr.AddrType == "ipv4" || addr.AddrType == "ipv6" {
				host.IP = addr.Addr
				break
			}
		}
		if host.IP == "" {
			continue
		}
		for _, name := range h.Hostnames {
			if name.Type == "PTR" || host.Hostname == "" {
				host.Hostname = name.Name
			}
		}
		for _, p := range h.Ports {
			if p.State.State != "open" {
				continue
			}
			host.Ports = append(host.Ports, Port{
				Number:   p.PortID,
				Protocol: p.Protocol,
				State:    p.State.State,
				Service:  p.Service.Name,
				Product:  p.Service.Product,
				Version:  p.Service.Version,
			})
		}
		hosts = append(hosts, host)
	}
	return hosts, nil
}

// ParseGrepable reads nmap -oG (.gnmap) output. Lines look like:
//
//	Host: 10.0.0.5 (name)  Ports: 22/open/tcp//ssh///, 80/open/tcp//http///
func ParseGrepable(r io.Reader) ([]Host, error) {
	byIP := map[string]*Host{}
	var order []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Host: ") || !strings.Contains(line, "Ports: ") {
			continue
		}
		fields := strings.Fields(line)
		ip := fields[1]
		host, ok := byIP[ip]
		if !ok {
			host = &Host{IP: ip}
			if len(fields) > 2 {
				host.Hostname = strings.Trim(fields[2], "()")
			}
			byIP[ip] = host
			order = append(order, ip)
		}

		portsPart := line[strings.Index(line, "Ports: ")+len("Ports: "):]
		if i := strings.Index(portsPart, "\tIgnored"); i >= 0 {
			portsPart = portsPart[:i]
		}
		for _, entry := range strings.Split(portsPart, ",") {
			parts := strings.Split(strings.TrimSpace(entry), "/")
			if len(parts) < 5 || parts[1] != "open" {
				continue
			}
			number, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			host.Ports = append(host.Ports, Port{
				Number:   number,
				Protocol: parts[2],
				State:    parts[1],
				Service:  parts[4],
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gnmap: %w", err)
	}

	hosts := make([]Host, 0, len(order))
	for _, ip := range order {
		hosts = append(hosts, *byIP[ip])
	}
	return hosts, nil
}

// ParseFile picks the parser from the file extension: .gnmap and .nmap
// use the grepable parser, everything else is treated as XML.
func ParseFile(path string) ([]Host, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gnmap", ".nmap":
		return ParseGrepable(f)
	default:
		return ParseXML(f)
	}
}

// ExcludePorts drops the listed port numbers from every host. Hosts
// stay in the live list even when all their ports are excluded.
func ExcludePorts(hosts []Host, exclude []int) []Host {
	if len(exclude) == 0 {
		return hosts
	}
	drop := map[int]struct{}{}
	for _, p := range exclude {
		drop[p] = struct{}{}
	}
	out := make([]Host, len(hosts))
	for i, h := range hosts {
		kept := make([]Port, 0, len(h.Ports))
		for _, p := range h.Ports {
			if _, skip := drop[p.Number]; !skip {
				kept = append(kept, p)
			}
		}
		h.Ports = kept
		out[i] = h
	}
	return out
}
