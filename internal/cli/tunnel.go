package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/execx"
	"github.com/sam1101-sys/reconkit/internal/tunnel"
)

func newTunnelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tunnel",
		Short: "Install, configure and launch tunnel/pivot providers",
		Long: "Supported providers: " + strings.Join(tunnel.Providers, ", ") + ".\n" +
			"Release-based providers are installed from their latest GitHub\n" +
			"release for the detected platform.",
	}
	cmd.AddCommand(newTunnelInstallCmd(a), newTunnelConfigureCmd(), newTunnelConnectCmd())
	return cmd
}

func newTunnelInstallCmd(a *app) *cobra.Command {
	var installDir string
	cmd := &cobra.Command{
		Use:   "install --provider <name>",
		Short: "Install a tunnel provider for this platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			platform, err := tunnel.DetectPlatform()
			if err != nil {
				return err
			}
			dir := installDir
			if dir == "" {
				dir = a.cfg.Tunnel.InstallDir
			}
			if dir == "" {
				dir = tunnel.DefaultInstallDir(platform)
			}

			installer := tunnel.NewInstaller(platform, dir)
			result, err := installer.Install(cmd.Context(), provider)
			if err != nil {
				return err
			}
			if len(result.Binaries) > 0 {
				fmt.Println("installed binaries:")
				for _, b := range result.Binaries {
					fmt.Printf("  %s\n", b)
				}
				fmt.Printf("add %s to PATH if needed\n", dir)
			}
			if result.Command != "" {
				fmt.Printf("command available: %s\n", result.Command)
			}
			return nil
		},
	}
	cmd.Flags().String("provider", "", "provider to install (required)")
	cmd.Flags().StringVar(&installDir, "install-dir", "", "binary destination (default ~/.local/bin, ~/bin on Windows)")
	cmd.MarkFlagRequired("provider")
	return cmd
}

func newTunnelConfigureCmd() *cobra.Command {
	var (
		configPath string
		proxyType  string
		proxyHost  string
		proxyPort  int
	)
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Write provider configuration (proxychains)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = tunnel.DefaultProxychainsPath()
			}
			err := tunnel.WriteProxychainsConfig(path, tunnel.ProxyConfig{
				Type: proxyType,
				Host: proxyHost,
				Port: proxyPort,
			})
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config-path", "", "output path (default ~/.proxychains/proxychains.conf)")
	cmd.Flags().StringVar(&proxyType, "proxy-type", "socks5", "proxy type: socks5, socks4 or http")
	cmd.Flags().StringVar(&proxyHost, "proxy-host", "127.0.0.1", "proxy host")
	cmd.Flags().IntVar(&proxyPort, "proxy-port", 1080, "proxy port")
	return cmd
}

func newTunnelConnectCmd() *cobra.Command {
	var (
		keepAlive bool
		sshHost   string
		sshUser   string
		sshPort   int
		sshKey    string
		socksPort int
		extraArgs []string
	)
	cmd := &cobra.Command{
		Use:   "connect --provider <name> [-- provider args]",
		Short: "Launch a tunnel provider, optionally restarting it on exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")
			runner := execx.NewSystemRunner()

			if provider == "ssh-dynamic" {
				if sshHost == "" || sshUser == "" {
					return fmt.Errorf("ssh-dynamic requires --ssh-host and --ssh-user")
				}
				sshArgs := tunnel.SSHDynamicArgs(tunnel.SSHDynamicOptions{
					Host:      sshHost,
					User:      sshUser,
					Port:      sshPort,
					KeyPath:   sshKey,
					SocksPort: socksPort,
				})
				return tunnel.Connect(cmd.Context(), runner, keepAlive, "ssh", sshArgs...)
			}

			name := provider
			if provider == "localtunnel" {
				name = "lt"
			}
			launchArgs := append(extraArgs, args...)
			return tunnel.Connect(cmd.Context(), runner, keepAlive, name, launchArgs...)
		},
	}
	cmd.Flags().String("provider", "", "provider to launch (required)")
	cmd.Flags().BoolVar(&keepAlive, "keep-alive", false, "restart the tunnel after a fixed delay whenever it exits")
	cmd.Flags().StringVar(&sshHost, "ssh-host", "", "jump host for ssh-dynamic")
	cmd.Flags().StringVar(&sshUser, "ssh-user", "", "username for ssh-dynamic")
	cmd.Flags().IntVar(&sshPort, "ssh-port", 22, "ssh port for ssh-dynamic")
	cmd.Flags().StringVar(&sshKey, "ssh-key", "", "private key path for ssh-dynamic")
	cmd.Flags().IntVar(&socksPort, "socks-port", 1080, "local SOCKS port for ssh-dynamic")
	cmd.Flags().StringSliceVar(&extraArgs, "arg", nil, "extra argument passed to the provider (repeatable)")
	cmd.MarkFlagRequired("provider")
	return cmd
}
