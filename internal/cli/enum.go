package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/execx"
	"github.com/sam1101-sys/reconkit/internal/probe"
	"github.com/sam1101-sys/reconkit/internal/runner"
	"github.com/sam1101-sys/reconkit/internal/targets"
)

func newEnumCmd(a *app) *cobra.Command {
	var (
		targetsPath string
		outputPath  string
		ports       []int
		timeoutSec  int
		concurrency int
		rateLimit   float64
		tryCreds    bool
		communities []string
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "enum <service>",
		Short: "Probe targets for one service and report findings",
		Long: "Probes every target once for the named service and writes a JSON\n" +
			"report. Anonymous and null-session checks always run; default\n" +
			"credential lists are attempted only with --try-creds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := args[0]
			if service == "list" {
				for _, name := range probe.Services() {
					fmt.Println(name)
				}
				return nil
			}

			if targetsPath == "" {
				return fmt.Errorf("a target file is required (-f)")
			}

			opts := probe.Options{
				TryCreds:    tryCreds,
				Communities: communities,
			}
			if timeoutSec > 0 {
				opts.Timeout = time.Duration(timeoutSec) * time.Second
			} else if a.cfg.Timeout() > 0 {
				opts.Timeout = a.cfg.Timeout()
			}

			p, err := probe.New(service, opts)
			if err != nil {
				return err
			}
			if bd, ok := p.(probe.BinaryDependent); ok {
				if _, err := execx.NewSystemRunner().LookPath(bd.RequiredBinary()); err != nil {
					return err
				}
			}
			ts, err := targets.ReadFile(targetsPath)
			if err != nil {
				return err
			}

			runOpts := runner.Options{
				Concurrency: concurrency,
				RateLimit:   rateLimit,
				Progress:    !noProgress,
			}
			if runOpts.Concurrency <= 0 {
				runOpts.Concurrency = a.cfg.Concurrency
			}

			report := runner.Run(cmd.Context(), p, ts, ports, runOpts)

			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := report.WriteJSON(out); err != nil {
				return err
			}
			report.PrintSummary(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetsPath, "file", "f", "", "target file, one host or host:port per line (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSON report file (default stdout)")
	cmd.Flags().IntSliceVarP(&ports, "ports", "p", nil, "ports to probe (default: service defaults)")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "per-probe timeout in seconds (default 5)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "concurrent probes (default 20)")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "max probe starts per second (default unlimited)")
	cmd.Flags().BoolVar(&tryCreds, "try-creds", false, "attempt the service's default credential list")
	cmd.Flags().StringSliceVar(&communities, "communities", nil, "SNMP community strings to try")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	return cmd
}
