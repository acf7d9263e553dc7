package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/pkg/core/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "retroscribe",
	Short: "RetroScribe - Interview Up-Sot Extraction Client",
	Long: `RetroScribe records or uploads interview audio, sends it to the
transcription backend, and extracts the most quotable timecoded
moments (up-sots) for broadcast editing.

Commands:
  deck      - interactive tape-deck TUI
  process   - one-shot extraction from an audio file
  extract   - extraction from existing transcript text
  devices   - list audio input devices
  library   - manage the recording library`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/retroscribe.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}

// loadConfig loads the TOML configuration, honoring the --config flag
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newBackendClient builds a gateway client from the configuration
func newBackendClient(cfg *config.Config) *gateway.Client {
	return gateway.NewClient(gateway.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout.Duration,
	})
}
