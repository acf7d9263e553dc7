// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     cmd
// Description: Up-sot extraction from existing transcript text
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/gateway"
)

var (
	extractCount       int
	extractSensitivity float64
	extractByRelevance bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <transcript-file>",
	Short: "Extract up-sots from timecoded transcript text",
	Long: `Extract up-sots from timecoded transcript text.

Takes a transcript that already carries timecodes, for example one
exported from an editing suite, and asks the backend to extract the
most quotable moments without re-running transcription. Use - to read
the transcript from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVarP(&extractCount, "count", "n", 10,
		"maximum number of up-sots (1-30)")
	extractCmd.Flags().Float64VarP(&extractSensitivity, "sensitivity", "s", 0.5,
		"extraction sensitivity (0.0-1.0)")
	extractCmd.Flags().BoolVar(&extractByRelevance, "by-relevance", false,
		"sort by relevance instead of chronologically")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	client := newBackendClient(cfg)

	var transcript []byte
	if args[0] == "-" {
		transcript, err = io.ReadAll(os.Stdin)
	} else {
		transcript, err = os.ReadFile(args[0])
	}
	if err != nil {
		printError("reading transcript", err)
		return err
	}

	sortOrder := gateway.SortChronological
	if extractByRelevance {
		sortOrder = gateway.SortRelevance
	}
	opts := gateway.ExtractOptions{
		MaxUpSots:   extractCount,
		Sensitivity: extractSensitivity,
		SortOrder:   sortOrder,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	result, err := client.Extract(ctx, string(transcript), opts)
	if err != nil {
		printError("extracting up-sots", err)
		return err
	}

	if len(result.UpSots) == 0 {
		fmt.Println("No up-sots found.")
		return nil
	}

	for _, moment := range result.UpSots {
		fmt.Printf("%s  %s\n", moment.Timecode, moment.Text)
		fmt.Printf("%*srelevance %.2f\n", len(moment.Timecode)+2, "", moment.Relevance)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "\n%d up-sots\n", result.Count)
	}

	return nil
}
