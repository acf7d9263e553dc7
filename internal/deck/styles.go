// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     deck
// Description: Styles for the deck TUI with a tape-deck inspired layout
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package deck

import (
	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorRecording = lipgloss.Color("#EF4444") // Red
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	// Background colors
	ColorBgPanel    = lipgloss.Color("#1E293B") // Slate 800
	ColorBgSelected = lipgloss.Color("#3B0764") // Purple 950

	// Text colors
	ColorText      = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
	ColorTextDim   = lipgloss.Color("#64748B") // Slate 500
)

// Logo/Header styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)
)

// Transport/state styles
var (
	StateIdleStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Bold(true)

	StateRecordingStyle = lipgloss.NewStyle().
				Foreground(ColorRecording).
				Bold(true)

	StateBusyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StateReadyStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	TimecodeStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	LevelMeterStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	LevelMeterHotStyle = lipgloss.NewStyle().
				Foreground(ColorRecording)
)

// Up-sot list styles
var (
	MomentTimecodeStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true)

	MomentTextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MomentRelevanceStyle = lipgloss.NewStyle().
				Foreground(ColorTextDim)
)

// Panel/Box styles
var (
	MomentsPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimmed).
				Padding(0, 1)

	ParamsPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorDimmed).
				Padding(0, 1)

	OverlayPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(ColorAccent).
				Background(ColorBgPanel).
				Padding(1, 2)

	TitlePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2).
			MarginBottom(1)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary).
				Padding(0, 1)
)

// List item styles
var (
	ItemStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorBgSelected).
				Bold(true).
				Padding(0, 1)

	ItemLabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgPanel).
			Foreground(ColorText).
			Padding(0, 1)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusOKStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)
)

// Help styles
var (
	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Loading/Spinner styles
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	WorkingStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Icons
const (
	IconRecord = "● "
	IconStop   = "■ "
	IconEject  = "⏏ "
	IconMoment = "◆ "
	IconCheck  = "✓"
)

// Logo
const Logo = "RetroScribe Deck"

// RenderKeyHint renders a keyboard shortcut hint
func RenderKeyHint(key, description string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(description)
}

// RenderFormatToggle renders an export format checkbox
func RenderFormatToggle(label string, enabled bool) string {
	if enabled {
		return StatusOKStyle.Render("[x] " + label)
	}
	return ItemLabelStyle.Render("[ ] " + label)
}
