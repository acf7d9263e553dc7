// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     cmd
// Description: Recording library management commands
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/internal/library"
	"github.com/msto63/retroscribe/pkg/core/config"
)

var (
	retranscribeCount       int
	retranscribeSensitivity float64
	retranscribeByRelevance bool
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the recording library",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored recordings",
	RunE:  runLibraryList,
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <recording-id>",
	Short: "Delete a stored recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryDelete,
}

var libraryRetranscribeCmd = &cobra.Command{
	Use:   "retranscribe <recording-id>",
	Short: "Re-run extraction on a stored recording",
	RunE:  runLibraryRetranscribe,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)
	libraryCmd.AddCommand(libraryRetranscribeCmd)

	libraryRetranscribeCmd.Flags().IntVarP(&retranscribeCount, "count", "n", 10,
		"maximum number of up-sots (1-30)")
	libraryRetranscribeCmd.Flags().Float64VarP(&retranscribeSensitivity, "sensitivity", "s", 0.5,
		"extraction sensitivity (0.0-1.0)")
	libraryRetranscribeCmd.Flags().BoolVar(&retranscribeByRelevance, "by-relevance", false,
		"sort by relevance instead of chronologically")
}

// newLibraryService builds the cached library service
func newLibraryService(cfg *config.Config) (*library.Service, error) {
	cache, err := library.NewCache(cfg.Library.CachePath, cfg.Library.CacheTTL.Duration)
	if err != nil {
		return nil, err
	}
	return library.NewService(newBackendClient(cfg), cache), nil
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	lib, err := newLibraryService(cfg)
	if err != nil {
		printError("opening library cache", err)
		return err
	}
	defer lib.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	recordings, err := lib.List(ctx)
	if err != nil {
		printError("listing recordings", err)
		return err
	}
	if len(recordings) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	for _, rec := range recordings {
		label := rec.Filename
		if rec.Title != "" {
			label = rec.Title
		}
		fmt.Printf("%-36s  %-30s  %s\n", rec.ID, label, rec.DateCreated)
	}
	return nil
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	lib, err := newLibraryService(cfg)
	if err != nil {
		printError("opening library cache", err)
		return err
	}
	defer lib.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	if err := lib.Delete(ctx, args[0]); err != nil {
		printError("deleting recording", err)
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runLibraryRetranscribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	lib, err := newLibraryService(cfg)
	if err != nil {
		printError("opening library cache", err)
		return err
	}
	defer lib.Close()

	params := gateway.Parameters{
		UpSotCount:      retranscribeCount,
		Sensitivity:     retranscribeSensitivity,
		SortByRelevance: retranscribeByRelevance,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	result, err := lib.Retranscribe(ctx, args[0], params)
	if err != nil {
		printError("retranscribing", err)
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
	return nil
}
