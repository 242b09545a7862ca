package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/report"
	"github.com/sam1101-sys/reconkit/internal/scan"
	"github.com/sam1101-sys/reconkit/internal/targets"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Convert nmap output into spreadsheet or CSV reports",
	}
	cmd.AddCommand(newReportXLSXCmd(), newReportCSVCmd())
	return cmd
}

func newReportXLSXCmd() *cobra.Command {
	var outputPath string
	var excludePorts []int
	cmd := &cobra.Command{
		Use:   "xlsx <scan.xml>",
		Short: "Write a Live Hosts + Port Details workbook from nmap XML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := report.ParseFile(args[0])
			if err != nil {
				return err
			}
			hosts = report.ExcludePorts(hosts, excludePorts)
			if outputPath == "" {
				outputPath = "report.xlsx"
			}
			if err := report.WriteXLSX(hosts, outputPath); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d live hosts)\n", outputPath, len(hosts))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "workbook path (default report.xlsx)")
	cmd.Flags().IntSliceVar(&excludePorts, "exclude-ports", nil, "ports to omit from the Port Details sheet")
	return cmd
}

func newReportCSVCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "csv <scan.xml|scan.gnmap>",
		Short: "Write IP,Port,Service rows from nmap XML or grepable output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hosts, err := report.ParseFile(args[0])
			if err != nil {
				return err
			}
			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			return report.WriteCSV(hosts, out)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "CSV file (default stdout)")
	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		targetsPath string
		outputPath  string
		ports       string
		noServiceID bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run nmap against a target file and write the xlsx report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := targets.ReadFile(targetsPath)
			if err != nil {
				return err
			}
			var hosts []report.Host
			if len(ts) > 0 {
				hosts, err = scan.Run(cmd.Context(), targets.Hosts(ts), scan.Options{
					Ports:            ports,
					ServiceDetection: !noServiceID,
				})
				if err != nil {
					return err
				}
			}
			if outputPath == "" {
				outputPath = "scan.xlsx"
			}
			if err := report.WriteXLSX(hosts, outputPath); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d live hosts)\n", outputPath, len(hosts))
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetsPath, "file", "f", "", "target file (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "workbook path (default scan.xlsx)")
	cmd.Flags().StringVarP(&ports, "ports", "p", "", "nmap port expression (default: nmap's defaults)")
	cmd.Flags().BoolVar(&noServiceID, "no-service-detection", false, "skip nmap service/version detection")
	cmd.MarkFlagRequired("file")
	return cmd
}
