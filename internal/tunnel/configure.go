package tunnel

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProxyConfig describes the single proxy entry written to a
// proxychains configuration.
type ProxyConfig struct {
	Type string // socks5, socks4 or http
	Host string
	Port int
}

var validProxyTypes = map[string]bool{"socks5": true, "socks4": true, "http": true}

// DefaultProxychainsPath is ~/.proxychains/proxychains.conf.
func DefaultProxychainsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".proxychains", "proxychains.conf")
}

// ProxychainsConfig renders a minimal strict-chain configuration.
func ProxychainsConfig(p ProxyConfig) (string, error) {
	if !validProxyTypes[p.Type] {
		return "", fmt.Errorf("invalid proxy type %q (socks5, socks4 or http)", p.Type)
	}
	if p.Port < 1 || p.Port > 65535 {
		return "", fmt.Errorf("invalid proxy port %d", p.Port)
	}
	return fmt.Sprintf("strict_chain\nproxy_dns\n[ProxyList]\n%s %s %d\n", p.Type, p.Host, p.Port), nil
}

// WriteProxychainsConfig writes the configuration, creating parent
// directories as needed.
func WriteProxychainsConfig(path string, p ProxyConfig) error {
	content, err := ProxychainsConfig(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
