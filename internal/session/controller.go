// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     session
// Description: Session controller driving capture, backend, and observers
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/msto63/retroscribe/internal/capture"
	"github.com/msto63/retroscribe/internal/gateway"
	"github.com/msto63/retroscribe/pkg/core/cache"
	"github.com/msto63/retroscribe/pkg/core/logging"
)

// Recorder abstracts the capture adapter
type Recorder interface {
	Start(ctx context.Context, deviceName string) error
	Stop() (*capture.Artifact, error)
	Level() float64
	Elapsed() time.Duration
	IsRunning() bool
	Close() error
}

// Backend abstracts the transcription backend
type Backend interface {
	RecordAudio(ctx context.Context, wav []byte) (string, error)
	UploadAudio(ctx context.Context, file io.Reader, filename string) (string, error)
	Transcribe(ctx context.Context, sessionID string, params gateway.Parameters) (*gateway.TranscribeResult, error)
	SetParameters(ctx context.Context, sessionID string, params gateway.Parameters) (*gateway.ParametersResult, error)
	SetScript(ctx context.Context, sessionID, script string) (*gateway.ScriptResult, error)
	GenerateOutput(ctx context.Context, sessionID string, formats gateway.Formats) (*gateway.OutputResult, error)
	Download(ctx context.Context, sessionID, format string) ([]byte, error)
	SendEmail(ctx context.Context, sessionID string, req gateway.EmailRequest) error
	Microphones(ctx context.Context) ([]gateway.Microphone, error)
	SaveRecording(ctx context.Context, sessionID string, metadata map[string]string) (*gateway.Recording, error)
	Retranscribe(ctx context.Context, recordingID string, params gateway.Parameters) (*gateway.RetranscribeResult, error)
}

// Event is the snapshot pushed to subscribers on every session change
type Event struct {
	State   State
	Status  string
	Moments []gateway.Moment
	Err     error
}

// Device is one selectable input device, from portaudio or the backend
type Device struct {
	ID        string
	Label     string
	IsDefault bool
}

// mutationKind distinguishes the two coalescable backend mutations
type mutationKind int

const (
	mutParameters mutationKind = iota
	mutScript
)

type mutation struct {
	kind   mutationKind
	params gateway.Parameters
	script string
}

// Controller owns the client-side session. All command methods are safe to
// call from separate goroutines; backend calls run inline in the caller.
type Controller struct {
	mu sync.Mutex

	sm       *StateMachine
	recorder Recorder
	backend  Backend
	log      *logging.Logger

	// epoch increments on every eject; async results carrying an older
	// epoch are discarded without touching state
	epoch       uint64
	sessionID   string
	recordingID string // set when the session came from the library
	params      gateway.Parameters
	script      string
	moments     []gateway.Moment
	transcript  string
	downloads   map[string]string

	// one mutating backend call in flight; later ones coalesce here
	mutationInFlight bool
	pendingMutation  *mutation

	captureCancel context.CancelFunc
	subscribers   []func(Event)
	listDevices   func() ([]capture.Device, error)
	deviceMemo    *cache.Memo
}

// NewController creates a session controller with injected collaborators
func NewController(recorder Recorder, backend Backend, params gateway.Parameters) *Controller {
	return &Controller{
		sm:          NewStateMachine(),
		recorder:    recorder,
		backend:     backend,
		params:      params.Normalize(),
		listDevices: capture.ListInputDevices,
		deviceMemo:  cache.New(cache.DefaultTTL),
		log:         logging.New("session"),
	}
}

// Subscribe registers an observer for session events
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// State returns the current session state
func (c *Controller) State() State {
	return c.sm.Current()
}

// SessionID returns the backend session id, empty outside an active session
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Moments returns a copy of the current up-sots in backend order
func (c *Controller) Moments() []gateway.Moment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]gateway.Moment, len(c.moments))
	copy(out, c.moments)
	return out
}

// FullTranscript returns the complete transcript of the current session
func (c *Controller) FullTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Parameters returns the current extraction parameters
func (c *Controller) Parameters() gateway.Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Script returns the current reference script
func (c *Controller) Script() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.script
}

// DownloadURLs returns the backend paths of the generated outputs
func (c *Controller) DownloadURLs() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.downloads))
	for k, v := range c.downloads {
		out[k] = v
	}
	return out
}

// Level returns the current input level while recording
func (c *Controller) Level() float64 {
	return c.recorder.Level()
}

// Elapsed returns the duration of the running take
func (c *Controller) Elapsed() time.Duration {
	return c.recorder.Elapsed()
}

// StartCapture begins recording a new take
func (c *Controller) StartCapture(deviceName string) error {
	if !c.sm.Transition(StateCapturing) {
		return failf(FailValidation, "cannot start recording while %s", c.sm.Current())
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.captureCancel = cancel
	c.mu.Unlock()

	if err := c.recorder.Start(ctx, deviceName); err != nil {
		cancel()
		c.sm.Reset()
		ferr := fail(FailCapture, err)
		c.publish("Recording failed", ferr)
		return ferr
	}

	c.publish("Recording...", nil)
	return nil
}

// StopCapture finalizes the take, uploads it, and runs transcription
func (c *Controller) StopCapture(ctx context.Context) error {
	if c.sm.Current() != StateCapturing {
		return failf(FailValidation, "not recording")
	}

	artifact, err := c.recorder.Stop()

	c.mu.Lock()
	if c.captureCancel != nil {
		c.captureCancel()
		c.captureCancel = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.sm.Reset()
		ferr := fail(FailCapture, err)
		c.publish("Recording failed", ferr)
		return ferr
	}

	if artifact == nil || artifact.Empty() {
		c.sm.Reset()
		ferr := failf(FailEmptyRecording, "no speech captured")
		c.publish("Nothing captured", ferr)
		return ferr
	}

	epoch := c.currentEpoch()
	if !c.sm.Transition(StateUploading) {
		return failf(FailValidation, "cannot upload while %s", c.sm.Current())
	}

	return c.uploadAndTranscribe(ctx, epoch, func() (string, error) {
		return c.backend.RecordAudio(ctx, artifact.WAV)
	})
}

// UploadFile sends an existing audio file to the backend and transcribes it
func (c *Controller) UploadFile(ctx context.Context, file io.Reader, filename string) error {
	if c.sm.Current() != StateIdle {
		return failf(FailValidation, "cannot upload while %s", c.sm.Current())
	}
	epoch := c.currentEpoch()
	if !c.sm.Transition(StateUploading) {
		return failf(FailValidation, "cannot upload while %s", c.sm.Current())
	}

	return c.uploadAndTranscribe(ctx, epoch, func() (string, error) {
		return c.backend.UploadAudio(ctx, file, filename)
	})
}

// uploadAndTranscribe runs the upload plus transcribe pipeline. The caller
// has already transitioned to Uploading with an epoch taken before the
// transition, so an eject racing the transition still marks the flow stale.
func (c *Controller) uploadAndTranscribe(ctx context.Context, epoch uint64, upload func() (string, error)) error {
	c.publish("Uploading...", nil)

	sessionID, err := upload()
	if c.stale(epoch) {
		return nil
	}
	if err != nil {
		c.sm.Reset()
		ferr := fail(FailUpload, err)
		c.publish("Upload failed", ferr)
		return ferr
	}

	c.mu.Lock()
	c.sessionID = sessionID
	c.recordingID = ""
	params := c.params
	c.mu.Unlock()

	c.sm.Transition(StateTranscribing)
	c.publish("Transcribing...", nil)

	result, err := c.backend.Transcribe(ctx, sessionID, params)
	if c.stale(epoch) {
		return nil
	}
	if err != nil {
		// session is unusable, user must re-upload
		c.mu.Lock()
		c.sessionID = ""
		c.mu.Unlock()
		c.sm.Reset()
		ferr := fail(FailTranscription, err)
		c.publish("Transcription failed", ferr)
		return ferr
	}

	c.mu.Lock()
	if c.sessionID != sessionID {
		c.mu.Unlock()
		return nil
	}
	c.moments = result.UpSots
	c.transcript = result.FullTranscript
	c.mu.Unlock()

	c.sm.Transition(StateReady)
	c.publish("Ready", nil)
	return nil
}

// ChangeParameters updates extraction parameters for the active session.
// If another mutation is in flight the call coalesces into the pending slot
// and its result arrives via the event stream.
func (c *Controller) ChangeParameters(ctx context.Context, params gateway.Parameters) error {
	if c.sm.Current() != StateReady {
		return failf(FailValidation, "parameters adjustable only when ready")
	}

	params = params.Normalize()

	c.mu.Lock()
	c.params = params
	if c.mutationInFlight {
		c.pendingMutation = &mutation{kind: mutParameters, params: params}
		c.mu.Unlock()
		return nil
	}
	c.mutationInFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	return c.runMutations(ctx, epoch, mutation{kind: mutParameters, params: params})
}

// ApplyScript sets the reference script for relevance scoring
func (c *Controller) ApplyScript(ctx context.Context, script string) error {
	if c.sm.Current() != StateReady {
		return failf(FailValidation, "script adjustable only when ready")
	}

	c.mu.Lock()
	if c.recordingID != "" {
		c.mu.Unlock()
		return failf(FailValidation, "script requires an uploaded session")
	}
	c.script = script
	if c.mutationInFlight {
		c.pendingMutation = &mutation{kind: mutScript, script: script}
		c.mu.Unlock()
		return nil
	}
	c.mutationInFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	return c.runMutations(ctx, epoch, mutation{kind: mutScript, script: script})
}

// runMutations issues the mutation, then drains any coalesced follow-up.
// On failure the previous moments are kept and only the error is surfaced.
func (c *Controller) runMutations(ctx context.Context, epoch uint64, m mutation) error {
	var lastErr error

	for {
		var moments []gateway.Moment
		var err error
		var kind FailureKind

		c.mu.Lock()
		sessionID := c.sessionID
		recordingID := c.recordingID
		c.mu.Unlock()

		switch m.kind {
		case mutParameters:
			kind = FailParameterUpdate
			if recordingID != "" {
				var result *gateway.RetranscribeResult
				result, err = c.backend.Retranscribe(ctx, recordingID, m.params)
				if result != nil {
					moments = result.UpSots
				}
			} else {
				var result *gateway.ParametersResult
				result, err = c.backend.SetParameters(ctx, sessionID, m.params)
				if result != nil {
					moments = result.UpSots
				}
			}
		case mutScript:
			kind = FailScriptApply
			var result *gateway.ScriptResult
			result, err = c.backend.SetScript(ctx, sessionID, m.script)
			if result != nil {
				moments = result.UpSots
			}
		}

		c.mu.Lock()
		if epoch != c.epoch {
			c.mutationInFlight = false
			c.pendingMutation = nil
			c.mu.Unlock()
			return nil
		}

		if err != nil {
			lastErr = fail(kind, err)
		} else if moments != nil {
			c.moments = moments
		}

		if c.pendingMutation != nil {
			m = *c.pendingMutation
			c.pendingMutation = nil
			c.mu.Unlock()
			if lastErr != nil {
				c.publish("Update failed", lastErr)
				lastErr = nil
			}
			continue
		}

		c.mutationInFlight = false
		c.mu.Unlock()

		if lastErr != nil {
			c.publish("Update failed", lastErr)
		} else {
			c.publish("Ready", nil)
		}
		return lastErr
	}
}

// RequestExport generates the selected output formats.
// Rejected before any network call when no format is selected.
func (c *Controller) RequestExport(ctx context.Context, formats gateway.Formats) (*gateway.OutputResult, error) {
	if !formats.Any() {
		return nil, failf(FailValidation, "no export format selected")
	}

	epoch := c.currentEpoch()
	if !c.sm.Transition(StateExporting) {
		return nil, failf(FailValidation, "export only available when ready")
	}
	c.publish("Exporting...", nil)

	sessionID := c.SessionID()

	result, err := c.backend.GenerateOutput(ctx, sessionID, formats)
	if c.stale(epoch) {
		return nil, nil
	}

	c.sm.Transition(StateReady)

	if err != nil {
		ferr := fail(FailExport, err)
		c.publish("Export failed", ferr)
		return nil, ferr
	}

	c.mu.Lock()
	c.downloads = result.DownloadURLs
	c.mu.Unlock()

	c.publish("Export complete", nil)
	return result, nil
}

// DownloadExport fetches one generated output file
func (c *Controller) DownloadExport(ctx context.Context, format string) ([]byte, error) {
	c.mu.Lock()
	sessionID := c.sessionID
	_, available := c.downloads[format]
	c.mu.Unlock()

	if !available {
		return nil, failf(FailValidation, "no %s output generated", format)
	}

	data, err := c.backend.Download(ctx, sessionID, format)
	if err != nil {
		return nil, fail(FailExport, err)
	}
	return data, nil
}

// SendEmail mails the generated outputs, available after a successful export
func (c *Controller) SendEmail(ctx context.Context, req gateway.EmailRequest) error {
	if c.sm.Current() != StateReady {
		return failf(FailValidation, "email only available when ready")
	}
	if req.Email == "" {
		return failf(FailValidation, "no recipient address")
	}

	c.mu.Lock()
	sessionID := c.sessionID
	hasOutputs := len(c.downloads) > 0
	c.mu.Unlock()

	if !hasOutputs {
		return failf(FailValidation, "generate outputs before sending email")
	}

	if err := c.backend.SendEmail(ctx, sessionID, req); err != nil {
		ferr := fail(FailEmail, err)
		c.publish("Email failed", ferr)
		return ferr
	}

	c.publish("Email sent", nil)
	return nil
}

// SaveToLibrary stores the session's recording permanently on the backend
func (c *Controller) SaveToLibrary(ctx context.Context, title string) (*gateway.Recording, error) {
	if c.sm.Current() != StateReady {
		return nil, failf(FailValidation, "save only available when ready")
	}

	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	if sessionID == "" {
		return nil, failf(FailValidation, "no uploaded session to save")
	}

	var metadata map[string]string
	if title != "" {
		metadata = map[string]string{"title": title}
	}

	recording, err := c.backend.SaveRecording(ctx, sessionID, metadata)
	if err != nil {
		ferr := fail(FailLibrary, err)
		c.publish("Save failed", ferr)
		return nil, ferr
	}

	c.publish("Saved to library", nil)
	return recording, nil
}

// LoadFromLibrary retranscribes a stored recording into a fresh session
func (c *Controller) LoadFromLibrary(ctx context.Context, recordingID string) error {
	c.Eject()

	epoch := c.currentEpoch()
	if !c.sm.Transition(StateTranscribing) {
		return failf(FailValidation, "cannot load while %s", c.sm.Current())
	}
	c.publish("Transcribing...", nil)

	params := c.Parameters()

	result, err := c.backend.Retranscribe(ctx, recordingID, params)
	if c.stale(epoch) {
		return nil
	}
	if err != nil {
		c.sm.Reset()
		ferr := fail(FailLibrary, err)
		c.publish("Load failed", ferr)
		return ferr
	}

	c.mu.Lock()
	c.recordingID = recordingID
	c.moments = result.UpSots
	c.transcript = result.Transcription.FullTranscript
	c.mu.Unlock()

	c.sm.Transition(StateReady)
	c.publish("Ready", nil)
	return nil
}

// Eject discards the current session and returns to Idle from any state.
// In-flight responses for the old session are dropped via the epoch bump.
func (c *Controller) Eject() {
	if c.recorder.IsRunning() {
		c.recorder.Stop()
	}

	c.mu.Lock()
	if c.captureCancel != nil {
		c.captureCancel()
		c.captureCancel = nil
	}
	c.epoch++
	c.sessionID = ""
	c.recordingID = ""
	c.moments = nil
	c.transcript = ""
	c.downloads = nil
	c.pendingMutation = nil
	c.mutationInFlight = false
	c.mu.Unlock()

	c.sm.Reset()
	c.publish("Ejected", nil)
}

// Devices lists input devices, local enumeration first, backend fallback.
// The two sources are never merged. Listings are memoized briefly since
// device enumeration re-initializes the audio stack.
func (c *Controller) Devices(ctx context.Context) ([]Device, error) {
	cached, err := c.deviceMemo.GetOrSet("devices", func() (interface{}, error) {
		return c.enumerateDevices(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cached.([]Device), nil
}

func (c *Controller) enumerateDevices(ctx context.Context) ([]Device, error) {
	if c.listDevices != nil {
		if devs, err := c.listDevices(); err == nil && len(devs) > 0 {
			out := make([]Device, len(devs))
			for i, d := range devs {
				out[i] = Device{ID: d.Name, Label: d.Name, IsDefault: d.IsDefault}
			}
			return out, nil
		}
	}

	mics, err := c.backend.Microphones(ctx)
	if err != nil {
		return nil, fail(FailCapture, err)
	}

	out := make([]Device, len(mics))
	for i, m := range mics {
		out[i] = Device{ID: m.ID, Label: m.Label, IsDefault: m.IsDefault}
	}
	return out, nil
}

// Close releases the capture device
func (c *Controller) Close() error {
	return c.recorder.Close()
}

// currentEpoch returns the epoch an async operation belongs to
func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// stale reports whether the session was ejected since epoch was taken
func (c *Controller) stale(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return epoch != c.epoch
}

// publish pushes a snapshot event to all subscribers
func (c *Controller) publish(status string, err error) {
	c.mu.Lock()
	moments := make([]gateway.Moment, len(c.moments))
	copy(moments, c.moments)
	subs := make([]func(Event), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	event := Event{
		State:   c.sm.Current(),
		Status:  status,
		Moments: moments,
		Err:     err,
	}

	for _, fn := range subs {
		fn(event)
	}
}
