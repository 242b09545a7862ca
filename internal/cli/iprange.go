package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/iprange"
)

func newCIDRCmd() *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "cidr",
		Short: "Expand CIDR blocks and IP ranges to individual addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := iprange.ReadBlocks(inputPath)
			if err != nil {
				return err
			}
			ips, err := iprange.Expand(blocks)
			if err != nil {
				return err
			}
			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			for _, ip := range ips {
				fmt.Fprintln(out, ip)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "file of CIDR/range lines (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newExtractCmd() *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract IPv4 addresses and CIDR blocks from arbitrary text",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}
			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			for _, token := range iprange.Extract(string(data)) {
				fmt.Fprintln(out, token)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "text file to scan (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newOverlapCmd() *cobra.Command {
	var files []string
	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Report overlapping blocks across two or more range files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) < 2 {
				return fmt.Errorf("overlap needs at least two files (-f a -f b, or -f a,b)")
			}
			sources, err := readFileBlocks(files)
			if err != nil {
				return err
			}
			pairs := iprange.Overlaps(sources)
			if len(pairs) == 0 {
				fmt.Println("no overlaps found")
				return nil
			}
			yellow := color.New(color.FgYellow).SprintFunc()
			for _, p := range pairs {
				fmt.Printf("%s  %s [%s] <-> %s [%s]\n",
					yellow("overlap:"), p.BlockA, p.FileA, p.BlockB, p.FileB)
			}
			fmt.Printf("%d overlapping pair(s)\n", len(pairs))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "range files to compare (repeat or comma-separate)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var inputPath, outputPath string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Render ranges as asset.ipv4 BETWEEN search clauses",
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := iprange.ReadBlocks(inputPath)
			if err != nil {
				return err
			}
			out, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer out.Close()
			fmt.Fprintln(out, iprange.Query(blocks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "file of CIDR/range lines (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var files []string
	var outputDir string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare address sets across sources: unique and shared IPs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) < 2 {
				return fmt.Errorf("analyze needs at least two files")
			}
			sources, err := readFileBlocks(files)
			if err != nil {
				return err
			}
			analysis, err := iprange.Analyze(sources)
			if err != nil {
				return err
			}
			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("creating output dir: %w", err)
				}
			}
			for label, ips := range analysis.Unique {
				if err := writeLines(filepath.Join(outputDir, iprange.UniqueFileName(label)), ips); err != nil {
					return err
				}
			}
			for combo, ips := range analysis.Common {
				if err := writeLines(filepath.Join(outputDir, iprange.ComboFileName(combo)), ips); err != nil {
					return err
				}
			}

			bold := color.New(color.Bold).SprintFunc()
			fmt.Println(bold("Totals:"))
			for _, src := range sources {
				fmt.Printf("  %-24s %6d addresses, %d unique\n",
					src.Label, analysis.Totals[src.Label], len(analysis.Unique[src.Label]))
			}
			for combo, ips := range analysis.Common {
				fmt.Printf("  shared by %-14s %6d addresses\n", combo, len(ips))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "range files to analyze (repeat or comma-separate)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for result files (default current)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readFileBlocks(files []string) ([]iprange.FileBlocks, error) {
	sources := make([]iprange.FileBlocks, 0, len(files))
	for _, path := range files {
		blocks, err := iprange.ReadBlocks(path)
		if err != nil {
			return nil, err
		}
		label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sources = append(sources, iprange.FileBlocks{Label: label, Blocks: blocks})
	}
	return sources, nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
