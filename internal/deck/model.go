// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     deck
// Description: Main Bubbletea model for the RetroScribe deck
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/internal/library"
	"github.com/msto63/retroscribe/internal/session"
)

// Overlay represents which modal panel is shown over the deck
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDevices
	OverlayLibrary
	OverlayScript
	OverlayEmail
	OverlayUpload
	OverlaySave
)

const opTimeout = 120 * time.Second

// Config holds deck configuration
type Config struct {
	ExportDir string
	Formats   gateway.Formats
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		ExportDir: ".",
		Formats:   gateway.Formats{TXT: true, EDL: true},
	}
}

// Model is the main Bubbletea model for the deck
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	working bool
	overlay Overlay
	errText string

	// Components
	textarea textarea.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// Session state mirrored from the controller
	ctrl           *session.Controller
	lib            *library.Service
	events         chan session.Event
	state          session.State
	status         string
	moments        []gateway.Moment
	params         gateway.Parameters
	formats        gateway.Formats
	downloads      map[string]string
	showTranscript bool

	// Recording state
	level   float64
	elapsed time.Duration

	// Device selection
	devices     []session.Device
	deviceIndex int
	deviceName  string
	lastEmail   string

	// Library browsing
	recordings     []gateway.Recording
	recordingIndex int

	exportDir string
}

// New creates a new deck model wired to the given controller
func New(ctrl *session.Controller, lib *library.Service, cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste the interview script here..."
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(10)
	ta.ShowLineNumbers = false

	ti := textinput.New()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	formats := cfg.Formats
	if !formats.Any() {
		formats = DefaultConfig().Formats
	}
	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	// Saved preferences win over config defaults, like the last-used model
	// selection in other clients
	deviceName := ""
	lastEmail := ""
	if saved, err := LoadSettings(); err == nil {
		deviceName = saved.LastDevice
		lastEmail = saved.LastEmail
		if saved.ExportTXT || saved.ExportPDF || saved.ExportEDL {
			formats = gateway.Formats{TXT: saved.ExportTXT, PDF: saved.ExportPDF, EDL: saved.ExportEDL}
		}
	}

	events := make(chan session.Event, 64)
	ctrl.Subscribe(func(ev session.Event) {
		publishEvent(events, ev)
	})

	return Model{
		textarea:   ta,
		input:      ti,
		spinner:    sp,
		ctrl:       ctrl,
		lib:        lib,
		events:     events,
		state:      ctrl.State(),
		status:     "Idle",
		params:     ctrl.Parameters(),
		formats:    formats,
		downloads:  map[string]string{},
		deviceName: deviceName,
		lastEmail:  lastEmail,
		exportDir:  exportDir,
	}
}

// saveSettings persists the current deck preferences
func (m Model) saveSettings() {
	_ = SaveSettings(&Settings{
		LastDevice: m.deviceName,
		ExportTXT:  m.formats.TXT,
		ExportPDF:  m.formats.PDF,
		ExportEDL:  m.formats.EDL,
		LastEmail:  m.lastEmail,
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForEvent(),
		m.loadDevices,
		tea.EnterAltScreen,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 5 // title panel + transport line
		footerHeight := 6 // params panel + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 8)
		m.input.Width = msg.Width - 12
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.working || m.state.IsBusy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tickMsg:
		// The meter ticker lives only while recording
		if m.state == session.StateCapturing {
			m.level = m.ctrl.Level()
			m.elapsed = m.ctrl.Elapsed()
			return m, m.tick()
		}
		return m, nil

	case sessionEventMsg:
		prev := m.state
		ev := msg.event
		m.state = ev.State
		m.status = ev.Status
		m.moments = ev.Moments
		if ev.Err != nil {
			m.errText = ev.Err.Error()
		} else {
			m.errText = ""
		}
		if ev.State == session.StateReady {
			m.working = false
			m.params = m.ctrl.Parameters()
		}
		if ev.State == session.StateIdle {
			m.working = false
			m.downloads = map[string]string{}
			m.level = 0
			m.elapsed = 0
			m.showTranscript = false
		}
		m.updateViewportContent()
		cmds = append(cmds, m.waitForEvent())
		if ev.State == session.StateCapturing && prev != session.StateCapturing {
			cmds = append(cmds, m.tick())
		}

	case devicesMsg:
		if msg.err != nil {
			m.errText = "device listing failed: " + msg.err.Error()
		} else {
			m.devices = msg.devices
			for i, dev := range m.devices {
				if dev.IsDefault {
					m.deviceIndex = i
					break
				}
			}
		}

	case recordingsMsg:
		m.working = false
		if msg.err != nil {
			m.errText = "library unavailable: " + msg.err.Error()
			m.overlay = OverlayNone
		} else {
			m.recordings = msg.recordings
			if m.recordingIndex >= len(m.recordings) {
				m.recordingIndex = 0
			}
		}

	case opResultMsg:
		m.working = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}

	case exportDoneMsg:
		m.working = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.downloads = msg.result.DownloadURLs
			m.status = fmt.Sprintf("Output generated (%s)", strings.Join(msg.result.Formats, ", "))
		}

	case downloadDoneMsg:
		m.working = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.status = "Exports written to " + msg.path
		}

	case savedMsg:
		m.working = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		} else {
			m.status = "Saved to library as " + msg.recording.ID
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.ctrl.Eject()
		return m, tea.Quit
	}

	// Overlay handling first, they swallow every key
	switch m.overlay {
	case OverlayDevices:
		return m.handleDeviceKeys(msg)
	case OverlayLibrary:
		return m.handleLibraryKeys(msg)
	case OverlayScript:
		return m.handleScriptKeys(msg)
	case OverlayEmail, OverlayUpload, OverlaySave:
		return m.handleInputKeys(msg)
	}

	switch msg.String() {
	case "q":
		m.ctrl.Eject()
		return m, tea.Quit

	case "r":
		return m.handleTransport()

	case "e":
		m.ctrl.Eject()
		return m, nil

	case "u":
		if m.state != session.StateIdle {
			m.errText = "eject the current session before uploading"
			return m, nil
		}
		m.overlay = OverlayUpload
		m.input.Placeholder = "Path to audio file"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "d":
		m.overlay = OverlayDevices
		return m, m.loadDevices

	case "b":
		m.overlay = OverlayLibrary
		m.working = true
		return m, tea.Batch(m.spinner.Tick, m.loadRecordings)

	case "s":
		if m.state != session.StateReady {
			m.errText = "save only available when ready"
			return m, nil
		}
		m.overlay = OverlaySave
		m.input.Placeholder = "Title for the library entry"
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "c":
		if m.state != session.StateReady {
			m.errText = "script adjustable only when ready"
			return m, nil
		}
		m.overlay = OverlayScript
		m.textarea.SetValue(m.ctrl.Script())
		m.textarea.Focus()
		return m, textarea.Blink

	case "m":
		if m.state != session.StateReady {
			m.errText = "email only available when ready"
			return m, nil
		}
		m.overlay = OverlayEmail
		m.input.Placeholder = "recipient@example.com"
		m.input.SetValue(m.lastEmail)
		m.input.Focus()
		return m, textinput.Blink

	case "f":
		m.showTranscript = !m.showTranscript
		m.updateViewportContent()
		return m, nil

	case "+", "=":
		return m.adjustParams(func(p *gateway.Parameters) { p.UpSotCount++ })

	case "-":
		return m.adjustParams(func(p *gateway.Parameters) { p.UpSotCount-- })

	case "]":
		return m.adjustParams(func(p *gateway.Parameters) { p.Sensitivity += 0.05 })

	case "[":
		return m.adjustParams(func(p *gateway.Parameters) { p.Sensitivity -= 0.05 })

	case "o":
		return m.adjustParams(func(p *gateway.Parameters) { p.SortByRelevance = !p.SortByRelevance })

	case "1":
		m.formats.TXT = !m.formats.TXT
		m.saveSettings()
		return m, nil

	case "2":
		m.formats.PDF = !m.formats.PDF
		m.saveSettings()
		return m, nil

	case "3":
		m.formats.EDL = !m.formats.EDL
		m.saveSettings()
		return m, nil

	case "g":
		if m.state != session.StateReady {
			m.errText = "export only available when ready"
			return m, nil
		}
		if !m.formats.Any() {
			m.errText = "no export format selected"
			return m, nil
		}
		m.working = true
		return m, tea.Batch(m.spinner.Tick, m.generateOutput(m.formats))

	case "w":
		if len(m.downloads) == 0 {
			m.errText = "generate output first"
			return m, nil
		}
		m.working = true
		return m, tea.Batch(m.spinner.Tick, m.writeExports())
	}

	switch msg.Type {
	case tea.KeyPgUp:
		m.viewport.ViewUp()
	case tea.KeyPgDown:
		m.viewport.ViewDown()
	}

	return m, nil
}

// handleTransport toggles between recording and stopping
func (m Model) handleTransport() (tea.Model, tea.Cmd) {
	switch m.state {
	case session.StateCapturing:
		m.working = true
		return m, tea.Batch(m.spinner.Tick, m.stopCapture())

	case session.StateIdle:
		if err := m.ctrl.StartCapture(m.deviceName); err != nil {
			m.errText = err.Error()
		}
		return m, nil

	default:
		m.errText = "eject the current session before recording"
		return m, nil
	}
}

// handleDeviceKeys handles the device selector overlay
func (m Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.deviceIndex > 0 {
			m.deviceIndex--
		}
	case "down", "j":
		if m.deviceIndex < len(m.devices)-1 {
			m.deviceIndex++
		}
	case "enter", " ":
		if m.deviceIndex < len(m.devices) {
			m.deviceName = m.devices[m.deviceIndex].Label
			m.saveSettings()
		}
		m.overlay = OverlayNone
	case "esc":
		m.overlay = OverlayNone
	}
	return m, nil
}

// handleLibraryKeys handles the library browser overlay
func (m Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.recordingIndex > 0 {
			m.recordingIndex--
		}
	case "down", "j":
		if m.recordingIndex < len(m.recordings)-1 {
			m.recordingIndex++
		}
	case "enter":
		if m.recordingIndex < len(m.recordings) {
			id := m.recordings[m.recordingIndex].ID
			m.overlay = OverlayNone
			m.working = true
			return m, tea.Batch(m.spinner.Tick, m.loadFromLibrary(id))
		}
		m.overlay = OverlayNone
	case "x":
		if m.recordingIndex < len(m.recordings) {
			id := m.recordings[m.recordingIndex].ID
			m.working = true
			return m, tea.Batch(m.spinner.Tick, m.deleteRecording(id))
		}
	case "esc":
		m.overlay = OverlayNone
	}
	return m, nil
}

// handleScriptKeys handles the script editor overlay
func (m Model) handleScriptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = OverlayNone
		m.textarea.Blur()
		return m, nil
	case "ctrl+s":
		script := m.textarea.Value()
		m.overlay = OverlayNone
		m.textarea.Blur()
		m.working = true
		return m, tea.Batch(m.spinner.Tick, m.applyScript(script))
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// handleInputKeys handles the single-line input overlays
func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.overlay = OverlayNone
		m.input.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		overlay := m.overlay
		m.overlay = OverlayNone
		m.input.Blur()
		if value == "" {
			return m, nil
		}

		m.working = true
		switch overlay {
		case OverlayUpload:
			return m, tea.Batch(m.spinner.Tick, m.uploadFile(value))
		case OverlayEmail:
			m.lastEmail = value
			m.saveSettings()
			return m, tea.Batch(m.spinner.Tick, m.sendEmail(value))
		case OverlaySave:
			return m, tea.Batch(m.spinner.Tick, m.saveToLibrary(value))
		}
		m.working = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// adjustParams applies a local tweak and pushes it to the controller
func (m Model) adjustParams(apply func(*gateway.Parameters)) (tea.Model, tea.Cmd) {
	if m.state != session.StateReady {
		m.errText = "parameters adjustable only when ready"
		return m, nil
	}

	apply(&m.params)
	m.params = m.params.Normalize()
	params := m.params
	m.working = true
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "parameters", err: m.ctrl.ChangeParameters(ctx, params)}
	})
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading deck..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTransport())
	b.WriteString("\n")

	switch m.overlay {
	case OverlayDevices:
		b.WriteString(m.renderDeviceOverlay())
	case OverlayLibrary:
		b.WriteString(m.renderLibraryOverlay())
	case OverlayScript:
		b.WriteString(m.renderScriptOverlay())
	case OverlayEmail, OverlayUpload, OverlaySave:
		b.WriteString(m.renderInputOverlay())
	default:
		b.WriteString(MomentsPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	}
	b.WriteString("\n")

	b.WriteString(m.renderParamsPanel())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderHeader renders the title panel
func (m Model) renderHeader() string {
	logo := LogoStyle.Render(Logo)

	var badge string
	switch m.state {
	case session.StateCapturing:
		badge = StateRecordingStyle.Render(IconRecord + m.state.String())
	case session.StateUploading, session.StateTranscribing, session.StateExporting:
		badge = StateBusyStyle.Render(m.state.Icon() + " " + m.state.String())
	case session.StateReady:
		badge = StateReadyStyle.Render(IconCheck + " " + m.state.String())
	default:
		badge = StateIdleStyle.Render(m.state.String())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		logo,
		strings.Repeat(" ", 3),
		badge,
	)

	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

// renderTransport renders the tape-deck line with timecode and level meter
func (m Model) renderTransport() string {
	if m.state != session.StateCapturing {
		if m.working || m.state.IsBusy() {
			return " " + m.spinner.View() + WorkingStyle.Render(" "+m.status)
		}
		device := m.deviceName
		if device == "" {
			device = "default input"
		}
		return " " + ItemLabelStyle.Render("Input: ") + ItemStyle.Render(device)
	}

	timecode := TimecodeStyle.Render(formatTimecode(m.elapsed))
	return " " + StateRecordingStyle.Render(IconRecord) + timecode + "  " + renderLevelMeter(m.level, 24)
}

// renderLevelMeter draws a bar meter for the current input level
func renderLevelMeter(level float64, width int) string {
	scaled := level * 3
	if scaled > 1 {
		scaled = 1
	}
	filled := int(scaled * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			if float64(i)/float64(width) > 0.8 {
				b.WriteString(LevelMeterHotStyle.Render("█"))
			} else {
				b.WriteString(LevelMeterStyle.Render("█"))
			}
		} else {
			b.WriteString(ItemLabelStyle.Render("░"))
		}
	}
	return b.String()
}

// renderParamsPanel renders extraction parameters and export formats
func (m Model) renderParamsPanel() string {
	order := "chronological"
	if m.params.SortByRelevance {
		order = "relevance"
	}

	params := fmt.Sprintf("Up-sots: %d   Sensitivity: %.2f   Order: %s",
		m.params.UpSotCount, m.params.Sensitivity, order)

	formats := strings.Join([]string{
		RenderFormatToggle("TXT", m.formats.TXT),
		RenderFormatToggle("PDF", m.formats.PDF),
		RenderFormatToggle("EDL", m.formats.EDL),
	}, " ")

	script := ""
	if m.ctrl.Script() != "" {
		script = "   " + StatusOKStyle.Render("script active")
	}

	return ParamsPanelStyle.Width(m.width - 2).Render(
		ItemStyle.Render(params) + "   " + formats + script)
}

// renderStatusBar renders status, error, and session info
func (m Model) renderStatusBar() string {
	left := m.status
	if m.errText != "" {
		left = StatusErrorStyle.Render("✗ " + m.errText)
	}

	right := ""
	if id := m.ctrl.SessionID(); id != "" {
		right = HelpDescStyle.Render("session " + shortID(id))
	}

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := m.width - leftLen - rightLen - 4
	if padding < 1 {
		padding = 1
	}

	return StatusBarStyle.Width(m.width - 2).Render(left + strings.Repeat(" ", padding) + right)
}

// renderHelpBar renders the contextual key hints
func (m Model) renderHelpBar() string {
	var items []string

	switch m.overlay {
	case OverlayDevices:
		items = []string{
			RenderKeyHint("↑/↓", "navigate"),
			RenderKeyHint("Enter", "select"),
			RenderKeyHint("Esc", "close"),
		}
	case OverlayLibrary:
		items = []string{
			RenderKeyHint("↑/↓", "navigate"),
			RenderKeyHint("Enter", "load"),
			RenderKeyHint("x", "delete"),
			RenderKeyHint("Esc", "close"),
		}
	case OverlayScript:
		items = []string{
			RenderKeyHint("Ctrl+S", "apply script"),
			RenderKeyHint("Esc", "cancel"),
		}
	case OverlayEmail, OverlayUpload, OverlaySave:
		items = []string{
			RenderKeyHint("Enter", "confirm"),
			RenderKeyHint("Esc", "cancel"),
		}
	default:
		switch m.state {
		case session.StateCapturing:
			items = []string{
				RenderKeyHint("r", "stop"),
				RenderKeyHint("e", "eject"),
			}
		case session.StateReady:
			items = []string{
				RenderKeyHint("+/-", "up-sots"),
				RenderKeyHint("[/]", "sensitivity"),
				RenderKeyHint("o", "order"),
				RenderKeyHint("c", "script"),
				RenderKeyHint("f", "transcript"),
				RenderKeyHint("1/2/3", "formats"),
				RenderKeyHint("g", "export"),
				RenderKeyHint("w", "download"),
				RenderKeyHint("m", "email"),
				RenderKeyHint("s", "save"),
				RenderKeyHint("e", "eject"),
			}
		default:
			items = []string{
				RenderKeyHint("r", "record"),
				RenderKeyHint("u", "upload"),
				RenderKeyHint("d", "devices"),
				RenderKeyHint("b", "library"),
			}
		}
		items = append(items, RenderKeyHint("q", "quit"))
	}

	return HelpStyle.Render(strings.Join(items, "  "))
}

// renderDeviceOverlay renders the input device selector
func (m Model) renderDeviceOverlay() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("Select input device"))
	content.WriteString("\n\n")

	if len(m.devices) == 0 {
		content.WriteString(ItemLabelStyle.Render("No input devices found"))
		content.WriteString("\n")
	}
	for i, dev := range m.devices {
		label := dev.Label
		if dev.IsDefault {
			label += " (default)"
		}
		if i == m.deviceIndex {
			content.WriteString(SelectedItemStyle.Render(" ▶ " + label + " "))
		} else {
			content.WriteString(ItemStyle.Render("   " + label))
		}
		content.WriteString("\n")
	}

	return m.renderOverlayPanel(content.String())
}

// renderLibraryOverlay renders the recording library browser
func (m Model) renderLibraryOverlay() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("Recording library"))
	content.WriteString("\n\n")

	if m.working {
		content.WriteString(m.spinner.View() + WorkingStyle.Render(" Loading..."))
		content.WriteString("\n")
	} else if len(m.recordings) == 0 {
		content.WriteString(ItemLabelStyle.Render("Library is empty"))
		content.WriteString("\n")
	}
	for i, rec := range m.recordings {
		label := rec.Filename
		if rec.Title != "" {
			label = rec.Title
		}
		meta := fmt.Sprintf(" %s  %s", rec.DateCreated, formatSize(rec.SizeBytes))
		if i == m.recordingIndex {
			content.WriteString(SelectedItemStyle.Render(" ▶ "+label+" ") + HelpDescStyle.Render(meta))
		} else {
			content.WriteString(ItemStyle.Render("   "+label) + HelpDescStyle.Render(meta))
		}
		content.WriteString("\n")
	}

	return m.renderOverlayPanel(content.String())
}

// renderScriptOverlay renders the script editor
func (m Model) renderScriptOverlay() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render("Interview script"))
	content.WriteString("\n")
	content.WriteString(HelpDescStyle.Render("Up-sots matching script sentences get boosted relevance"))
	content.WriteString("\n\n")
	content.WriteString(m.textarea.View())
	return m.renderOverlayPanel(content.String())
}

// renderInputOverlay renders the single-line input overlays
func (m Model) renderInputOverlay() string {
	var title string
	switch m.overlay {
	case OverlayEmail:
		title = "Send exports via email"
	case OverlayUpload:
		title = "Upload audio file"
	case OverlaySave:
		title = "Save to library"
	}

	var content strings.Builder
	content.WriteString(HeaderStyle.Render(title))
	content.WriteString("\n\n")
	content.WriteString(FocusedInputStyle.Width(m.width - 10).Render(m.input.View()))
	return m.renderOverlayPanel(content.String())
}

func (m Model) renderOverlayPanel(content string) string {
	return OverlayPanelStyle.
		Width(m.width - 2).
		Height(m.viewport.Height).
		Render(content)
}

// updateViewportContent fills the main panel with up-sots or the transcript
func (m *Model) updateViewportContent() {
	if m.showTranscript {
		transcript := m.ctrl.FullTranscript()
		if transcript == "" {
			transcript = ItemLabelStyle.Render("No transcript yet")
		}
		m.viewport.SetContent(transcript)
		return
	}

	if len(m.moments) == 0 {
		m.viewport.SetContent(ItemLabelStyle.Render(
			"No up-sots yet. Press r to record or u to upload an interview."))
		return
	}

	var content strings.Builder
	for i, moment := range m.moments {
		content.WriteString(MomentTimecodeStyle.Render(moment.Timecode))
		content.WriteString("  ")
		content.WriteString(MomentTextStyle.Width(m.width - 24).Render(moment.Text))
		content.WriteString("\n")
		content.WriteString(MomentRelevanceStyle.Render(
			fmt.Sprintf("   %s relevance %.2f", IconMoment, moment.Relevance)))
		if i < len(m.moments)-1 {
			content.WriteString("\n\n")
		}
	}
	m.viewport.SetContent(content.String())
}

// Commands

// publishEvent queues a controller event for the update loop. When the
// buffer is full the oldest queued event is dropped so the newest snapshot
// always gets through.
func publishEvent(events chan session.Event, ev session.Event) {
	for {
		select {
		case events <- ev:
			return
		default:
		}
		select {
		case <-events:
		default:
		}
	}
}

// waitForEvent blocks on the controller's event stream
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return sessionEventMsg{event: <-events}
	}
}

// tick schedules the next meter update
func (m Model) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadDevices lists available input devices
func (m Model) loadDevices() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	devices, err := m.ctrl.Devices(ctx)
	return devicesMsg{devices: devices, err: err}
}

// loadRecordings lists the recording library
func (m Model) loadRecordings() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recordings, err := m.lib.List(ctx)
	return recordingsMsg{recordings: recordings, err: err}
}

// stopCapture finalizes the take and runs the upload pipeline
func (m Model) stopCapture() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "stop", err: ctrl.StopCapture(ctx)}
	}
}

// uploadFile sends a local audio file through the transcription pipeline
func (m Model) uploadFile(path string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return opResultMsg{op: "upload", err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "upload", err: ctrl.UploadFile(ctx, f, filepath.Base(path))}
	}
}

// applyScript pushes a new interview script
func (m Model) applyScript(script string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "script", err: ctrl.ApplyScript(ctx, script)}
	}
}

// generateOutput requests export generation
func (m Model) generateOutput(formats gateway.Formats) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		result, err := ctrl.RequestExport(ctx, formats)
		return exportDoneMsg{result: result, err: err}
	}
}

// writeExports downloads every generated format into the export directory
func (m Model) writeExports() tea.Cmd {
	ctrl := m.ctrl
	downloads := m.downloads
	dir := m.exportDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		for format := range downloads {
			data, err := ctrl.DownloadExport(ctx, format)
			if err != nil {
				return downloadDoneMsg{format: format, err: err}
			}
			path := filepath.Join(dir, "retroscribe."+format)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return downloadDoneMsg{format: format, err: err}
			}
		}
		return downloadDoneMsg{path: dir}
	}
}

// sendEmail mails the generated exports
func (m Model) sendEmail(address string) tea.Cmd {
	ctrl := m.ctrl
	req := gateway.EmailRequest{
		Email:      address,
		Subject:    "Your interview up-sots",
		IncludeTXT: m.formats.TXT,
		IncludePDF: m.formats.PDF,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "email", err: ctrl.SendEmail(ctx, req)}
	}
}

// saveToLibrary stores the session's recording in the library
func (m Model) saveToLibrary(title string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		rec, err := ctrl.SaveToLibrary(ctx, title)
		return savedMsg{recording: rec, err: err}
	}
}

// loadFromLibrary loads a stored recording into the deck
func (m Model) loadFromLibrary(recordingID string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opResultMsg{op: "load", err: ctrl.LoadFromLibrary(ctx, recordingID)}
	}
}

// deleteRecording removes a recording and refreshes the listing
func (m Model) deleteRecording(recordingID string) tea.Cmd {
	lib := m.lib
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := lib.Delete(ctx, recordingID); err != nil {
			return recordingsMsg{err: err}
		}
		recordings, err := lib.List(ctx)
		return recordingsMsg{recordings: recordings, err: err}
	}
}

// Run starts the deck TUI and blocks until the user quits
func Run(ctrl *session.Controller, lib *library.Service, cfg Config) error {
	p := tea.NewProgram(New(ctrl, lib, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// formatTimecode renders a duration as HH:MM:SS
func formatTimecode(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// shortID truncates a session id for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatSize renders a byte count human-readably
func formatSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
