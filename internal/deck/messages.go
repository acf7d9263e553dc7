// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     deck
// Description: Message types for async operations in the deck TUI
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package deck

import (
	"time"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/internal/session"
)

// Message types for tea.Cmd async operations

// sessionEventMsg carries a state change published by the session controller
type sessionEventMsg struct {
	event session.Event
}

// tickMsg drives the level meter and elapsed timecode while recording
type tickMsg time.Time

// devicesMsg is sent when the input device list is loaded
type devicesMsg struct {
	devices []session.Device
	err     error
}

// recordingsMsg is sent when the library listing is loaded
type recordingsMsg struct {
	recordings []gateway.Recording
	err        error
}

// opResultMsg is sent when a controller operation settles
type opResultMsg struct {
	op  string
	err error
}

// exportDoneMsg is sent when output generation finishes
type exportDoneMsg struct {
	result *gateway.OutputResult
	err    error
}

// downloadDoneMsg is sent when an export file was written to disk
type downloadDoneMsg struct {
	format string
	path   string
	err    error
}

// savedMsg is sent when the current session was saved to the library
type savedMsg struct {
	recording *gateway.Recording
	err       error
}
