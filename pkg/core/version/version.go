// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     version
// Description: Central version information for the client
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package version

import "fmt"

// Build information, overridable at build time via
// -ldflags "-X .../pkg/core/version.Version=..."
var (
	Version   = "0.1.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

// UserAgent returns the HTTP User-Agent string sent to the backend
func UserAgent() string {
	return fmt.Sprintf("retroscribe/%s", Version)
}
