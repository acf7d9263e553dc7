// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     deck
// Description: Settings persistence for the deck
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package deck

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds persistent deck settings
type Settings struct {
	LastDevice string `json:"last_device,omitempty"`
	ExportTXT  bool   `json:"export_txt"`
	ExportPDF  bool   `json:"export_pdf"`
	ExportEDL  bool   `json:"export_edl"`
	LastEmail  string `json:"last_email,omitempty"`
}

// settingsDir returns the directory for settings files
func settingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".retroscribe"
	}
	return filepath.Join(home, ".retroscribe")
}

// settingsFile returns the path to the settings file
func settingsFile() string {
	return filepath.Join(settingsDir(), "deck.json")
}

// LoadSettings loads settings from disk. A missing or unreadable file yields
// empty settings.
func LoadSettings() (*Settings, error) {
	data, err := os.ReadFile(settingsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return &Settings{}, nil
	}

	return &settings, nil
}

// SaveSettings saves settings to disk
func SaveSettings(settings *Settings) error {
	dir := settingsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(settingsFile(), data, 0644)
}
