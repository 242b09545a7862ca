// Package tunnel installs, configures and launches tunnel/pivot
// providers: cloudflared, ngrok, localtunnel, chisel, bore, rathole,
// frp, ligolo-ng, plus socat, proxychains and ssh dynamic forwarding.
package tunnel

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Platform is the os/arch pair releases are selected for.
type Platform struct {
	OS   string // linux, darwin, windows
	Arch string // amd64, arm64, arm
}

var supportedOS = map[string]bool{"linux": true, "darwin": true, "windows": true}
var supportedArch = map[string]bool{"amd64": true, "arm64": true, "arm": true}

// DetectPlatform reads the running platform and rejects combinations no
// provider publishes builds for.
func DetectPlatform() (Platform, error) {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if !supportedOS[p.OS] {
		return Platform{}, fmt.Errorf("unsupported OS: %s", p.OS)
	}
	if !supportedArch[p.Arch] {
		return Platform{}, fmt.Errorf("unsupported CPU architecture: %s", p.Arch)
	}
	return p, nil
}

// DefaultInstallDir is ~/.local/bin, or ~/bin on Windows.
func DefaultInstallDir(p Platform) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if p.OS == "windows" {
		return filepath.Join(home, "bin")
	}
	return filepath.Join(home, ".local", "bin")
}

// osKeywords lists the release-asset name fragments that identify an OS.
func osKeywords(osName string) []string {
	switch osName {
	case "linux":
		return []string{"linux", "gnu", "musl", "unknown-linux"}
	case "darwin":
		return []string{"darwin", "mac", "macos", "osx", "apple-darwin"}
	default:
		return []string{"windows", "win", "pc-windows", "mingw"}
	}
}

func archKeywords(arch string) []string {
	switch arch {
	case "amd64":
		return []string{"amd64", "x86_64", "x64"}
	case "arm64":
		return []string{"arm64", "aarch64"}
	default:
		return []string{"arm", "armv7"}
	}
}
