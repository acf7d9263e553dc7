package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/capture"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio input devices",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	devices, err := capture.ListInputDevices()
	if err == nil && len(devices) > 0 {
		for _, dev := range devices {
			marker := "  "
			if dev.IsDefault {
				marker = "* "
			}
			fmt.Printf("%s%s (%d ch, %.0f Hz)\n", marker, dev.Name, dev.MaxInputChannels, dev.DefaultSampleRate)
		}
		return nil
	}

	// No local audio stack, ask the backend what it knows
	cfg, cfgErr := loadConfig()
	if cfgErr != nil {
		printError("loading config", cfgErr)
		return cfgErr
	}
	client := newBackendClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout.Duration)
	defer cancel()

	mics, micErr := client.Microphones(ctx)
	if micErr != nil {
		printError("listing devices", micErr)
		return micErr
	}
	for _, mic := range mics {
		marker := "  "
		if mic.IsDefault {
			marker = "* "
		}
		fmt.Printf("%s%s [%s]\n", marker, mic.Label, mic.ID)
	}
	return nil
}
