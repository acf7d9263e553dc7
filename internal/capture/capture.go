// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     capture
// Description: Microphone capture using PortAudio
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gordonklaus/portaudio"

	"github.com/msto63/retroscribe/pkg/core/logging"
)

const (
	// DefaultSampleRate is 16kHz, what the backend transcriber expects
	DefaultSampleRate = 16000

	// DefaultFramesPerBuffer is the default buffer size
	DefaultFramesPerBuffer = 512

	// DefaultChannels is mono audio
	DefaultChannels = 1

	// levelWindow is how many of the newest samples feed the VU meter
	levelWindow = 1600
)

var (
	// ErrAlreadyRecording is returned when Start is called on a running take
	ErrAlreadyRecording = errors.New("capture already running")

	// ErrNotRecording is returned when Stop is called without a running take
	ErrNotRecording = errors.New("no capture running")

	// ErrDeviceUnavailable is returned when the input device cannot be opened
	ErrDeviceUnavailable = errors.New("input device unavailable")

	// ErrPermissionDenied is returned when the OS refuses microphone access
	ErrPermissionDenied = errors.New("microphone permission denied")
)

// Artifact is one finished take, ready for upload
type Artifact struct {
	ID          string
	WAV         []byte
	SampleRate  int
	SampleCount int
	Duration    time.Duration
	HasSpeech   bool
}

// Empty reports whether the take contains no usable speech
func (a *Artifact) Empty() bool {
	return a.SampleCount == 0 || !a.HasSpeech
}

// Config holds capture settings
type Config struct {
	SampleRate float64
	BufferSize int
	Channels   int
	DeviceName string // Name of the input device (empty = default)
	VAD        VADConfig
}

// DefaultConfig returns default capture settings
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BufferSize: DefaultFramesPerBuffer,
		Channels:   DefaultChannels,
		VAD:        DefaultVADConfig(),
	}
}

// Recorder records takes from the microphone
type Recorder struct {
	mu          sync.RWMutex
	stream      *portaudio.Stream
	sampleRate  float64
	bufferSize  int
	channels    int
	deviceName  string
	running     bool
	initialized bool

	buffer  *Buffer
	vad     *WebRTCVAD
	tracker *SpeechTracker
	log     *logging.Logger
}

// NewRecorder creates a new recorder and initializes PortAudio
func NewRecorder(cfg Config) (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r := &Recorder{
		sampleRate:  cfg.SampleRate,
		bufferSize:  cfg.BufferSize,
		channels:    cfg.Channels,
		deviceName:  cfg.DeviceName,
		buffer:      NewBuffer(),
		log:         logging.New("capture"),
		initialized: true,
	}

	// Without a VAD the empty-take guard falls back to sample count only
	vad, err := NewWebRTCVAD(cfg.VAD)
	if err != nil {
		r.log.Warn("VAD unavailable, empty-take detection degraded", "error", err)
	} else {
		r.vad = vad
		r.tracker = NewSpeechTracker(cfg.VAD)
	}

	return r, nil
}

// Start begins a new take on the given device (empty = configured default)
func (r *Recorder) Start(ctx context.Context, deviceName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRecording
	}

	if deviceName != "" {
		r.deviceName = deviceName
	}

	buffer := make([]float32, r.bufferSize)

	var stream *portaudio.Stream
	var err error

	if r.deviceName != "" && r.deviceName != "default" {
		device, findErr := findDeviceByName(r.deviceName)
		if findErr != nil {
			r.log.Warn("device not found, using default input", "device", r.deviceName)
			stream, err = portaudio.OpenDefaultStream(r.channels, 0, r.sampleRate, r.bufferSize, buffer)
		} else {
			streamParams := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: r.channels,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      r.sampleRate,
				FramesPerBuffer: r.bufferSize,
			}
			stream, err = portaudio.OpenStream(streamParams, buffer)
		}
	} else {
		stream, err = portaudio.OpenDefaultStream(r.channels, 0, r.sampleRate, r.bufferSize, buffer)
	}

	if err != nil {
		return classifyStreamError(err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return classifyStreamError(err)
	}

	r.stream = stream
	r.running = true
	r.buffer.Clear()
	if r.tracker != nil {
		r.tracker.Reset()
	}

	go r.captureLoop(ctx, buffer)

	r.log.Info("take started", "device", r.deviceName, "sample_rate", r.sampleRate)
	return nil
}

// captureLoop reads from the stream into the take buffer until stopped
func (r *Recorder) captureLoop(ctx context.Context, buffer []float32) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			r.mu.RLock()
			if !r.running || r.stream == nil {
				r.mu.RUnlock()
				return
			}
			stream := r.stream
			r.mu.RUnlock()

			if err := stream.Read(); err != nil {
				r.mu.RLock()
				stillRunning := r.running
				r.mu.RUnlock()
				if !stillRunning {
					return
				}
				continue
			}

			samples := make([]float32, len(buffer))
			copy(samples, buffer)
			r.buffer.Append(samples)

			if r.vad != nil {
				if isSpeech, err := r.vad.Process(samples); err == nil {
					r.tracker.Update(isSpeech)
				}
			}
		}
	}
}

// Stop ends the running take and returns the finished artifact
func (r *Recorder) Stop() (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil, ErrNotRecording
	}

	r.running = false

	if r.stream != nil {
		r.stream.Stop()
		if err := r.stream.Close(); err != nil {
			r.log.Warn("failed to close audio stream", "error", err)
		}
		r.stream = nil
	}

	samples := r.buffer.Get()
	rate := int(r.sampleRate)

	hasSpeech := len(samples) > 0
	if r.tracker != nil {
		hasSpeech = r.tracker.HasSpeech()
	}

	artifact := &Artifact{
		ID:          uuid.New().String(),
		WAV:         EncodeWAV(samples, rate),
		SampleRate:  rate,
		SampleCount: len(samples),
		Duration:    time.Duration(float64(len(samples)) / r.sampleRate * float64(time.Second)),
		HasSpeech:   hasSpeech,
	}

	r.log.Info("take stopped",
		"id", artifact.ID,
		"duration", artifact.Duration,
		"empty", artifact.Empty())

	return artifact, nil
}

// Level returns the current input level for the VU meter
func (r *Recorder) Level() float64 {
	r.mu.RLock()
	running := r.running
	r.mu.RUnlock()
	if !running {
		return 0
	}
	return r.buffer.Level(levelWindow)
}

// Elapsed returns the duration recorded so far
func (r *Recorder) Elapsed() time.Duration {
	return time.Duration(r.buffer.DurationSeconds(r.sampleRate) * float64(time.Second))
}

// IsRunning returns whether a take is in progress
func (r *Recorder) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Close releases the device and terminates PortAudio
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.running {
		r.running = false
		if r.stream != nil {
			r.stream.Stop()
			r.stream.Close()
			r.stream = nil
		}
	}
	defer r.mu.Unlock()

	if r.initialized {
		if err := portaudio.Terminate(); err != nil {
			return fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		r.initialized = false
	}

	return nil
}

// findDeviceByName finds a PortAudio input device by name
func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", name)
}

// classifyStreamError maps portaudio failures onto the package sentinels
func classifyStreamError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}
