package tunnel

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sam1101-sys/reconkit/internal/execx"
)

// Providers lists every supported provider name, in menu order.
var Providers = []string{
	"cloudflared", "ngrok", "localtunnel", "proxychains", "ssh-dynamic",
	"socat", "chisel", "bore", "rathole", "frp", "ligolo-ng",
}

// githubProvider describes a provider installed from its latest GitHub
// release: name hints boost matching assets, expected binaries select
// files out of the extracted tree.
type githubProvider struct {
	repo      string
	nameHints []string
	binaries  []string
}

var githubProviders = map[string]githubProvider{
	"chisel":    {repo: "jpillora/chisel", nameHints: []string{"chisel"}, binaries: []string{"chisel"}},
	"bore":      {repo: "ekzhang/bore", nameHints: []string{"bore"}, binaries: []string{"bore"}},
	"rathole":   {repo: "rapiz1/rathole", nameHints: []string{"rathole"}, binaries: []string{"rathole"}},
	"frp":       {repo: "fatedier/frp", nameHints: []string{"frp", "frpc", "frps"}, binaries: []string{"frpc", "frps"}},
	"ligolo-ng": {repo: "nicocha30/ligolo-ng", nameHints: []string{"ligolo", "proxy", "agent"}, binaries: []string{"proxy", "agent", "ligolo-proxy", "ligolo-agent"}},
}

// cloudflaredAssets and ngrokTargets are the fixed per-platform download
// names; these projects publish predictable URLs instead of scored assets.
var cloudflaredAssets = map[Platform]string{
	{OS: "linux", Arch: "amd64"}:   "cloudflared-linux-amd64",
	{OS: "linux", Arch: "arm64"}:   "cloudflared-linux-arm64",
	{OS: "darwin", Arch: "amd64"}:  "cloudflared-darwin-amd64",
	{OS: "darwin", Arch: "arm64"}:  "cloudflared-darwin-arm64",
	{OS: "windows", Arch: "amd64"}: "cloudflared-windows-amd64.exe",
	{OS: "windows", Arch: "arm64"}: "cloudflared-windows-arm64.exe",
}

var ngrokTargets = map[Platform]string{
	{OS: "linux", Arch: "amd64"}:   "linux-amd64",
	{OS: "linux", Arch: "arm64"}:   "linux-arm64",
	{OS: "darwin", Arch: "amd64"}:  "darwin-amd64",
	{OS: "darwin", Arch: "arm64"}:  "darwin-arm64",
	{OS: "windows", Arch: "amd64"}: "windows-amd64",
	{OS: "windows", Arch: "arm64"}: "windows-arm64",
}

// Installer installs providers for one platform. HTTP and process
// execution are injected so tests never touch the network or PATH.
type Installer struct {
	Platform   Platform
	InstallDir string
	Client     *http.Client
	Runner     execx.Runner

	// commandTimeout bounds package-manager and npm invocations.
	commandTimeout time.Duration
}

// NewInstaller wires an installer with the real HTTP client and runner.
func NewInstaller(p Platform, installDir string) *Installer {
	return &Installer{
		Platform:       p,
		InstallDir:     installDir,
		Client:         &http.Client{Timeout: 5 * time.Minute},
		Runner:         execx.NewSystemRunner(),
		commandTimeout: 10 * time.Minute,
	}
}

// InstallResult tells the operator what landed where.
type InstallResult struct {
	// Binaries are the installed file paths, for providers that
	// download binaries.
	Binaries []string
	// Command is the runnable command name, for providers that resolve
	// to an already-present or package-managed tool.
	Command string
}

// Install installs the named provider and reports what it produced.
func (in *Installer) Install(ctx context.Context, provider string) (*InstallResult, error) {
	switch provider {
	case "cloudflared":
		return in.installCloudflared(ctx)
	case "ngrok":
		return in.installNgrok(ctx)
	case "localtunnel":
		return in.installLocaltunnel(ctx)
	case "socat":
		return in.installPackaged(ctx, "socat", map[string]string{
			"apt": "socat", "dnf": "socat", "yum": "socat",
			"pacman": "socat", "zypper": "socat", "apk": "socat",
		}, "socat")
	case "proxychains":
		return in.installProxychains(ctx)
	case "ssh-dynamic":
		return in.installPackaged(ctx, "ssh", map[string]string{
			"apt": "openssh-client", "dnf": "openssh-clients", "yum": "openssh-clients",
			"pacman": "openssh", "zypper": "openssh", "apk": "openssh-client",
		}, "openssh")
	default:
		gp, ok := githubProviders[provider]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q (supported: %s)", provider, strings.Join(Providers, ", "))
		}
		return in.installFromGitHub(ctx, gp)
	}
}

func (in *Installer) installFromGitHub(ctx context.Context, gp githubProvider) (*InstallResult, error) {
	assets, err := LatestAssets(ctx, in.Client, gp.repo)
	if err != nil {
		return nil, err
	}
	asset, err := SelectAsset(assets, in.Platform, gp.nameHints)
	if err != nil {
		return nil, err
	}
	log.Info("selected release asset", "repo", gp.repo, "asset", asset.Name)

	workDir, err := os.MkdirTemp("", "reconkit-tunnel-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	archivePath := filepath.Join(workDir, asset.Name)
	if err := in.download(ctx, asset.URL, archivePath); err != nil {
		return nil, err
	}
	extractDir := filepath.Join(workDir, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, err
	}
	if err := extractArchive(archivePath, extractDir); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", asset.Name, err)
	}

	candidates, err := collectBinaries(extractDir, gp.binaries)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no executable candidates found in asset %s", asset.Name)
	}
	installed, err := in.placeBinaries(candidates)
	if err != nil {
		return nil, err
	}
	return &InstallResult{Binaries: installed}, nil
}

func (in *Installer) installCloudflared(ctx context.Context) (*InstallResult, error) {
	target, ok := cloudflaredAssets[in.Platform]
	if !ok {
		return nil, fmt.Errorf("cloudflared does not publish builds for %s/%s", in.Platform.OS, in.Platform.Arch)
	}
	name := "cloudflared"
	if in.Platform.OS == "windows" {
		name += ".exe"
	}
	if err := os.MkdirAll(in.InstallDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating install dir: %w", err)
	}
	dst := filepath.Join(in.InstallDir, name)
	url := "https://github.com/cloudflare/cloudflared/releases/latest/download/" + target
	if err := in.download(ctx, url, dst); err != nil {
		return nil, err
	}
	if err := in.markExecutable(dst); err != nil {
		return nil, err
	}
	return &InstallResult{Binaries: []string{dst}}, nil
}

func (in *Installer) installNgrok(ctx context.Context) (*InstallResult, error) {
	target, ok := ngrokTargets[in.Platform]
	if !ok {
		return nil, fmt.Errorf("ngrok does not publish builds for %s/%s", in.Platform.OS, in.Platform.Arch)
	}
	url := fmt.Sprintf("https://bin.equinox.io/c/bNyj1mQVY4c/ngrok-v3-stable-%s.zip", target)

	workDir, err := os.MkdirTemp("", "reconkit-tunnel-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	zipPath := filepath.Join(workDir, "ngrok.zip")
	if err := in.download(ctx, url, zipPath); err != nil {
		return nil, err
	}
	extractDir := filepath.Join(workDir, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return nil, err
	}
	if err := extractArchive(zipPath, extractDir); err != nil {
		return nil, fmt.Errorf("extracting ngrok: %w", err)
	}

	name := "ngrok"
	if in.Platform.OS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(extractDir, name)
	if _, err := os.Stat(candidate); err != nil {
		return nil, fmt.Errorf("downloaded ngrok archive did not include the expected binary")
	}
	installed, err := in.placeBinaries([]string{candidate})
	if err != nil {
		return nil, err
	}
	return &InstallResult{Binaries: installed}, nil
}

func (in *Installer) installLocaltunnel(ctx context.Context) (*InstallResult, error) {
	npm, err := in.Runner.LookPath("npm")
	if err != nil {
		return nil, err
	}
	if err := in.runOK(ctx, npm, "install", "-g", "localtunnel"); err != nil {
		return nil, err
	}
	return &InstallResult{Command: "lt"}, nil
}

func (in *Installer) installProxychains(ctx context.Context) (*InstallResult, error) {
	for _, name := range []string{"proxychains4", "proxychains"} {
		if _, err := in.Runner.LookPath(name); err == nil {
			return &InstallResult{Command: name}, nil
		}
	}
	res, err := in.installPackaged(ctx, "proxychains4", map[string]string{
		"apt": "proxychains4", "dnf": "proxychains-ng", "yum": "proxychains-ng",
		"pacman": "proxychains-ng", "zypper": "proxychains-ng", "apk": "proxychains-ng",
	}, "proxychains-ng")
	if err == nil {
		return res, nil
	}
	if _, lookErr := in.Runner.LookPath("proxychains"); lookErr == nil {
		return &InstallResult{Command: "proxychains"}, nil
	}
	return nil, err
}

// installPackaged resolves a tool from PATH, or installs it through the
// platform's package manager (brew on macOS, detected manager on Linux;
// Windows is not supported for these tools).
func (in *Installer) installPackaged(ctx context.Context, command string, linuxPackages map[string]string, brewPackage string) (*InstallResult, error) {
	if _, err := in.Runner.LookPath(command); err == nil {
		return &InstallResult{Command: command}, nil
	}

	switch in.Platform.OS {
	case "windows":
		return nil, fmt.Errorf("%s is not supported natively on Windows by this installer", command)
	case "darwin":
		brew, err := in.Runner.LookPath("brew")
		if err != nil {
			return nil, fmt.Errorf("homebrew is required to install %s on macOS: %w", command, err)
		}
		if err := in.runOK(ctx, brew, "install", brewPackage); err != nil {
			return nil, err
		}
	default:
		manager, err := in.linuxPackageManager()
		if err != nil {
			return nil, err
		}
		pkg := linuxPackages[manager]
		var steps [][]string
		switch manager {
		case "apt":
			steps = [][]string{{"sudo", "apt", "update"}, {"sudo", "apt", "install", "-y", pkg}}
		case "pacman":
			steps = [][]string{{"sudo", "pacman", "-Sy", "--noconfirm", pkg}}
		case "apk":
			steps = [][]string{{"sudo", "apk", "add", pkg}}
		default: // dnf, yum, zypper
			steps = [][]string{{"sudo", manager, "install", "-y", pkg}}
		}
		for _, step := range steps {
			if err := in.runOK(ctx, step[0], step[1:]...); err != nil {
				return nil, err
			}
		}
	}

	if _, err := in.Runner.LookPath(command); err != nil {
		return nil, fmt.Errorf("%s installation completed but the command is still not on PATH: %w", command, err)
	}
	return &InstallResult{Command: command}, nil
}

func (in *Installer) linuxPackageManager() (string, error) {
	for _, manager := range []string{"apt", "dnf", "yum", "pacman", "zypper", "apk"} {
		if _, err := in.Runner.LookPath(manager); err == nil {
			return manager, nil
		}
	}
	return "", fmt.Errorf("no supported Linux package manager found")
}

func (in *Installer) runOK(ctx context.Context, name string, args ...string) error {
	out, err := in.Runner.Run(ctx, in.commandTimeout, name, args...)
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("%s %s failed with exit code %d: %s",
			name, strings.Join(args, " "), out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return nil
}

func (in *Installer) download(ctx context.Context, url, dst string) error {
	log.Info("downloading", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := in.Client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: status %s", url, resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return writeStream(dst, resp.Body, 0o644)
}

// collectBinaries walks an extracted release tree and picks the files
// matching the provider's expected binary names, with a size-based
// fallback when names do not match.
func collectBinaries(dir string, expected []string) ([]string, error) {
	wanted := map[string]bool{}
	for _, name := range expected {
		wanted[strings.ToLower(name)] = true
	}

	var matched, fallback []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		norm := strings.ToLower(strings.TrimSuffix(info.Name(), ".exe"))
		if wanted[norm] || hasExpectedPrefix(norm, expected) {
			matched = append(matched, path)
			return nil
		}
		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".md", ".txt", ".yaml", ".yml", ".json", ".toml", ".sig":
			return nil
		}
		if info.Size() >= 50_000 {
			fallback = append(fallback, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking extracted files: %w", err)
	}
	if len(matched) > 0 {
		sort.Strings(matched)
		return matched, nil
	}
	sort.Strings(fallback)
	return fallback, nil
}

func hasExpectedPrefix(norm string, expected []string) bool {
	for _, name := range expected {
		if strings.HasPrefix(norm, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// placeBinaries copies candidates into the install dir, stripping .exe
// on non-Windows platforms and marking them executable.
func (in *Installer) placeBinaries(paths []string) ([]string, error) {
	if err := os.MkdirAll(in.InstallDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating install dir: %w", err)
	}
	var installed []string
	for _, src := range paths {
		name := filepath.Base(src)
		if in.Platform.OS != "windows" {
			name = strings.TrimSuffix(name, ".exe")
		}
		dst := filepath.Join(in.InstallDir, name)
		if err := copyFile(src, dst, 0o755); err != nil {
			return nil, err
		}
		if err := in.markExecutable(dst); err != nil {
			return nil, err
		}
		installed = append(installed, dst)
	}
	if len(installed) == 0 {
		return nil, fmt.Errorf("no binaries were installed from the selected release asset")
	}
	return installed, nil
}

func (in *Installer) markExecutable(path string) error {
	if in.Platform.OS == "windows" {
		return nil
	}
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("marking %s executable: %w", path, err)
	}
	return nil
}
