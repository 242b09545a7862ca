// Package cli defines the reconkit command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/config"
)

// app carries state shared across subcommands: loaded defaults and the
// persistent flag values.
type app struct {
	cfg        *config.Config
	configPath string
	verbose    bool
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: &config.Config{}}

	root := &cobra.Command{
		Use:           "reconkit",
		Short:         "Network reconnaissance toolkit",
		Long:          "reconkit bundles IP-range utilities, service enumeration probes,\nnmap report conversion and tunnel/pivot setup into one binary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.verbose {
				log.SetLevel(log.DebugLevel)
			}
			path := a.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/reconkit/config.yaml)")

	root.AddCommand(
		newCIDRCmd(),
		newExtractCmd(),
		newOverlapCmd(),
		newQueryCmd(),
		newAnalyzeCmd(),
		newEnumCmd(a),
		newReportCmd(),
		newScanCmd(),
		newTunnelCmd(a),
		newDiscoverCmd(),
		newScreenshotCmd(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
// Usage, input and dependency problems exit 1; per-target probe
// failures never reach here.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		log.Error(err.Error())
		return 1
	}
	return 0
}

// openOutput returns the output writer for -o flags: the named file, or
// stdout when the flag is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
