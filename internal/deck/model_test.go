package deck

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/internal/session"
)

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{5 * time.Second, "00:00:05"},
		{70 * time.Second, "00:01:10"},
		{time.Hour + 2*time.Minute + 30*time.Second, "01:02:30"},
	}

	for _, tt := range tests {
		if got := formatTimecode(tt.d); got != tt.want {
			t.Errorf("formatTimecode(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.bytes); got != tt.want {
			t.Errorf("formatSize(%v) = %v, want %v", tt.bytes, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdef1234567890"); got != "abcdef12" {
		t.Errorf("shortID() = %v", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %v", got)
	}
}

func TestPublishEventKeepsNewest(t *testing.T) {
	events := make(chan session.Event, 2)

	for i := 0; i < 10; i++ {
		publishEvent(events, session.Event{Status: fmt.Sprintf("event %d", i)})
	}

	var last session.Event
	for drained := false; !drained; {
		select {
		case ev := <-events:
			last = ev
		default:
			drained = true
		}
	}

	// Overflow drops the oldest queued events, never the newest
	if last.Status != "event 9" {
		t.Errorf("last queued event = %q, want event 9", last.Status)
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormatToggles(t *testing.T) {
	m := Model{formats: gateway.Formats{TXT: true}}

	updated, _ := m.handleKeyPress(keyMsg("1"))
	m = updated.(Model)
	if m.formats.TXT {
		t.Error("1 should toggle TXT off")
	}

	updated, _ = m.handleKeyPress(keyMsg("2"))
	m = updated.(Model)
	if !m.formats.PDF {
		t.Error("2 should toggle PDF on")
	}

	updated, _ = m.handleKeyPress(keyMsg("3"))
	m = updated.(Model)
	if !m.formats.EDL {
		t.Error("3 should toggle EDL on")
	}
}

func TestExportRequiresReady(t *testing.T) {
	m := Model{state: session.StateIdle, formats: gateway.Formats{TXT: true}}

	updated, cmd := m.handleKeyPress(keyMsg("g"))
	m = updated.(Model)
	if cmd != nil {
		t.Error("export must not start outside Ready")
	}
	if m.errText == "" {
		t.Error("expected an error message")
	}
}

func TestExportRequiresFormat(t *testing.T) {
	m := Model{state: session.StateReady}

	updated, cmd := m.handleKeyPress(keyMsg("g"))
	m = updated.(Model)
	if cmd != nil {
		t.Error("export must not start with no format selected")
	}
	if m.errText == "" {
		t.Error("expected an error message")
	}
}

func TestParameterKeysRequireReady(t *testing.T) {
	m := Model{state: session.StateCapturing, params: gateway.DefaultParameters()}

	updated, cmd := m.handleKeyPress(keyMsg("+"))
	m = updated.(Model)
	if cmd != nil {
		t.Error("parameter change must not fire while recording")
	}
	if m.errText == "" {
		t.Error("expected an error message")
	}
	if m.params.UpSotCount != gateway.DefaultParameters().UpSotCount {
		t.Error("parameters must stay unchanged")
	}
}

func TestDeviceOverlayNavigation(t *testing.T) {
	m := Model{
		overlay: OverlayDevices,
		devices: []session.Device{
			{Label: "Built-in Microphone", IsDefault: true},
			{Label: "USB Interface"},
		},
	}

	updated, _ := m.handleKeyPress(keyMsg("j"))
	m = updated.(Model)
	if m.deviceIndex != 1 {
		t.Errorf("deviceIndex = %v, want 1", m.deviceIndex)
	}

	// Past the end stays put
	updated, _ = m.handleKeyPress(keyMsg("j"))
	m = updated.(Model)
	if m.deviceIndex != 1 {
		t.Errorf("deviceIndex = %v, want 1", m.deviceIndex)
	}

	updated, _ = m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.overlay != OverlayNone {
		t.Error("enter should close the overlay")
	}
	if m.deviceName != "USB Interface" {
		t.Errorf("deviceName = %v", m.deviceName)
	}
}

func TestLibraryOverlayEscape(t *testing.T) {
	m := Model{overlay: OverlayLibrary}

	updated, _ := m.handleKeyPress(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.overlay != OverlayNone {
		t.Error("esc should close the overlay")
	}
}

func TestTickStopsOutsideRecording(t *testing.T) {
	m := Model{state: session.StateReady}

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd != nil {
		t.Error("ticker must not reschedule outside recording")
	}
}
