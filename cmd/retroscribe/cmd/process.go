// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     cmd
// Description: One-shot up-sot extraction from an audio file
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/gateway"
)

var (
	processCount       int
	processSensitivity float64
	processByRelevance bool
)

var processCmd = &cobra.Command{
	Use:   "process <audio-file>",
	Short: "Transcribe an audio file and print its up-sots",
	Long: `Transcribe an audio file and print its up-sots.

Sends the file through the backend's combined upload, transcription,
and extraction pipeline and prints one up-sot per block:

  00:01:10  The budget was approved without a single objection.
            relevance 0.82`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().IntVarP(&processCount, "count", "n", 10,
		"maximum number of up-sots (1-30)")
	processCmd.Flags().Float64VarP(&processSensitivity, "sensitivity", "s", 0.5,
		"extraction sensitivity (0.0-1.0)")
	processCmd.Flags().BoolVar(&processByRelevance, "by-relevance", false,
		"sort by relevance instead of chronologically")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	client := newBackendClient(cfg)

	f, err := os.Open(args[0])
	if err != nil {
		printError("opening audio file", err)
		return err
	}
	defer f.Close()

	params := gateway.Parameters{
		UpSotCount:      processCount,
		Sensitivity:     processSensitivity,
		SortByRelevance: processByRelevance,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	result, err := client.Process(ctx, f, filepath.Base(args[0]), params)
	if err != nil {
		printError("processing audio", err)
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
		fmt.Fprintf(os.Stderr, "\n%d segments, %d up-sots, session %s\n",
			result.SegmentsCount, result.UpSotsCount, result.SessionID)
		if info, err := client.SessionInfo(ctx, result.SessionID); err == nil {
			fmt.Fprintf(os.Stderr, "backend status %s, formats available: %s\n",
				info.Status, strings.Join(info.AvailableFormats, ", "))
		}
	}

	return nil
}
