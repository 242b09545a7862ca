package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/netinfo"
)

func newDiscoverCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Print the local subnet and hosts-file entries as a target list",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := netinfo.New()

			subnet, err := d.LocalSubnet(cmd.Context())
			if err != nil {
				log.Warn("no local subnet detected", "error", err)
			}
			mappings, err := d.HostMappings(cmd.Context())
			if err != nil {
				log.Warn("no hosts-file mappings", "error", err)
			}
			if subnet == "" && len(mappings) == 0 {
				return fmt.Errorf("nothing discovered")
			}

			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			for _, line := range netinfo.TargetLines(subnet, mappings) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	return cmd
}
