// Package netinfo inspects the local machine for reconnaissance
// starting points: the primary private subnet and hostname mappings
// from the system hosts file, emitted as target-file-ready lines.
package netinfo

import (
	"context"
	"fmt"
	"net"
	"sort"

	"github.com/charmbracelet/log"
)

// Discovery reports the local network environment.
type Discovery interface {
	// LocalSubnet returns the primary private network in CIDR notation
	// (the network address, not the host address).
	LocalSubnet(ctx context.Context) (string, error)

	// HostMappings returns hostname -> IP mappings from the hosts file.
	HostMappings(ctx context.Context) (map[string][]string, error)
}

type discoverer struct {
	hostsPath string
}

// New returns a Discovery backed by the system's interfaces and
// /etc/hosts.
func New() Discovery {
	return &discoverer{hostsPath: hostsFilePath}
}

// LocalSubnet walks the up, non-loopback interfaces and picks the first
// private IPv4 network, preferring 192.168.0.0/16 over 10.0.0.0/8 over
// 172.16.0.0/12. Home and lab networks are usually Class C; the larger
// private spaces tend to be VPN or container overlays.
func (d *discoverer) LocalSubnet(ctx context.Context) (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("listing network interfaces: %w", err)
	}

	var class192, class10, class172 *net.IPNet
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			log.Debug("skipping interface", "interface", iface.Name, "error", err)
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil {
				continue
			}
			switch {
			case ip[0] == 192 && ip[1] == 168:
				if class192 == nil {
					class192 = ipNet
				}
			case ip[0] == 10:
				if class10 == nil {
					class10 = ipNet
				}
			case ip[0] == 172 && ip[1] >= 16 && ip[1] <= 31:
				if class172 == nil {
					class172 = ipNet
				}
			}
		}
	}

	selected := class192
	if selected == nil {
		selected = class10
	}
	if selected == nil {
		selected = class172
	}
	if selected == nil {
		return "", fmt.Errorf("no private IPv4 network found on any interface")
	}
	return networkCIDR(selected), nil
}

// networkCIDR masks the host address down to the network address.
func networkCIDR(ipNet *net.IPNet) string {
	return fmt.Sprintf("%s/%d",
		ipNet.IP.Mask(ipNet.Mask),
		maskOnes(ipNet.Mask))
}

func maskOnes(mask net.IPMask) int {
	ones, _ := mask.Size()
	return ones
}

// TargetLines flattens a discovery into lines suitable for a target
// file: the subnet CIDR first, then hostname entries sorted by name.
func TargetLines(subnet string, mappings map[string][]string) []string {
	lines := []string{}
	if subnet != "" {
		lines = append(lines, subnet)
	}
	names := make([]string, 0, len(mappings))
	for name := range mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, name)
	}
	return lines
}
