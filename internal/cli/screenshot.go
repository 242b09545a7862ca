package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sam1101-sys/reconkit/internal/screenshot"
)

func newScreenshotCmd() *cobra.Command {
	var (
		inputPath  string
		outputDir  string
		resolution string
		timeoutSec int
	)
	cmd := &cobra.Command{
		Use:   "screenshot",
		Short: "Capture headless-browser screenshots of listed web services",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readScreenshotEntries(inputPath)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no usable entries in %s", inputPath)
			}

			width, height, err := parseResolution(resolution)
			if err != nil {
				return err
			}
			result, err := screenshot.Capture(cmd.Context(), entries, screenshot.Options{
				OutputDir:   outputDir,
				Width:       width,
				Height:      height,
				PageTimeout: time.Duration(timeoutSec) * time.Second,
			})
			if err != nil {
				return err
			}
			fmt.Printf("captured %d screenshot(s) into %s (%d failed)\n",
				len(result.Captured), result.Dir, result.Failed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "file of host port / host:port lines (required)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default screenshots_<timestamp>)")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "1280x720", "browser window size, WxH")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 10, "per-page timeout in seconds")
	cmd.MarkFlagRequired("file")
	return cmd
}

func readScreenshotEntries(path string) ([]screenshot.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var entries []screenshot.Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := screenshot.ParseEntry(line)
		if err != nil {
			log.Warn("skipping entry", "file", path, "line", lineNo, "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func parseResolution(s string) (int, int, error) {
	var width, height int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &width, &height); err != nil || width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("invalid resolution %q (expected WxH, e.g. 1280x720)", s)
	}
	return width, height, nil
}
