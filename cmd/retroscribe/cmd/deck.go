// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the RetroScribe deck TUI
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/capture"
	"github.com/msto63/retroscribe/internal/deck"
	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/internal/library"
	"github.com/msto63/retroscribe/internal/session"
)

var (
	deckBackendAddr string
	deckDevice      string
	deckExportDir   string
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Start the interactive RetroScribe deck",
	Long: `Start the interactive RetroScribe deck.

The deck is a tape-deck style terminal UI for the full interview
workflow:

  - record from a microphone or upload an audio file
  - transcription and up-sot extraction via the backend
  - parameter tuning with live re-extraction
  - script matching for relevance boosts
  - export as TXT, PDF, or EDL and delivery via email

Keys:
  r           record / stop
  e           eject
  u           upload audio file
  d           select input device
  b           browse the recording library
  +/- [/] o   tune extraction parameters
  g           generate exports
  Ctrl+C      quit`,
	RunE: runDeck,
}

func init() {
	rootCmd.AddCommand(deckCmd)

	deckCmd.Flags().StringVar(&deckBackendAddr, "backend-addr", "",
		"backend base URL (overrides config)")
	deckCmd.Flags().StringVar(&deckDevice, "device", "",
		"input device name (default: system default)")
	deckCmd.Flags().StringVar(&deckExportDir, "export-dir", ".",
		"directory for downloaded exports")
}

func runDeck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	if deckBackendAddr != "" {
		cfg.Backend.BaseURL = deckBackendAddr
	}
	if deckDevice != "" {
		cfg.Audio.InputDevice = deckDevice
	}

	client := newBackendClient(cfg)

	recorder, err := capture.NewRecorder(capture.Config{
		SampleRate: float64(cfg.Audio.SampleRate),
		BufferSize: cfg.Audio.BufferSize,
		Channels:   capture.DefaultChannels,
		DeviceName: cfg.Audio.InputDevice,
		VAD: capture.VADConfig{
			SampleRate:        cfg.Audio.SampleRate,
			Mode:              cfg.Audio.VADMode,
			MinSpeechDuration: time.Duration(cfg.Audio.MinSpeechDurationMs) * time.Millisecond,
		},
	})
	if err != nil {
		printError("initializing audio", err)
		return err
	}
	defer recorder.Close()

	ctrl := session.NewController(recorder, client, gateway.Parameters{
		UpSotCount:      cfg.Extraction.UpSotCount,
		Sensitivity:     cfg.Extraction.Sensitivity,
		SortByRelevance: cfg.Extraction.SortByRelevance,
	})
	defer ctrl.Close()

	cache, err := library.NewCache(cfg.Library.CachePath, cfg.Library.CacheTTL.Duration)
	if err != nil {
		printError("opening library cache", err)
		return err
	}
	lib := library.NewService(client, cache)
	defer lib.Close()

	return deck.Run(ctrl, lib, deck.Config{
		ExportDir: deckExportDir,
		Formats: gateway.Formats{
			TXT: cfg.Export.TXT,
			PDF: cfg.Export.PDF,
			EDL: cfg.Export.EDL,
		},
	})
}
