// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     capture
// Description: Voice activity detection for empty-take rejection
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package capture

import (
	"fmt"
	"time"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// VADConfig holds voice activity detection settings
type VADConfig struct {
	// SampleRate is the audio sample rate (8000, 16000, 32000, or 48000)
	SampleRate int

	// Mode is the WebRTC aggressiveness (0-3, higher filters more)
	Mode int

	// MinSpeechDuration is the minimum speech duration for a take to count
	MinSpeechDuration time.Duration
}

// DefaultVADConfig returns default VAD settings
func DefaultVADConfig() VADConfig {
	return VADConfig{
		SampleRate:        16000,
		Mode:              2,
		MinSpeechDuration: 500 * time.Millisecond,
	}
}

// WebRTCVAD detects speech using WebRTC's voice activity detector
type WebRTCVAD struct {
	vad        *webrtcvad.VAD
	sampleRate int
	mode       int
}

// NewWebRTCVAD creates a new WebRTC VAD instance
func NewWebRTCVAD(cfg VADConfig) (*WebRTCVAD, error) {
	vad, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create WebRTC VAD: %w", err)
	}

	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}

	if err := vad.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set VAD mode: %w", err)
	}

	validRates := []int{8000, 16000, 32000, 48000}
	validRate := false
	for _, r := range validRates {
		if cfg.SampleRate == r {
			validRate = true
			break
		}
	}
	if !validRate {
		return nil, fmt.Errorf("invalid sample rate %d, must be one of %v", cfg.SampleRate, validRates)
	}

	return &WebRTCVAD{
		vad:        vad,
		sampleRate: cfg.SampleRate,
		mode:       mode,
	}, nil
}

// Process processes float32 audio samples and returns whether speech is detected
func (w *WebRTCVAD) Process(samples []float32) (bool, error) {
	int16Samples := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		int16Samples[i] = int16(s * 32767)
	}

	return w.processInt16(int16Samples)
}

// processInt16 processes 16-bit samples in 10ms frames
func (w *WebRTCVAD) processInt16(samples []int16) (bool, error) {
	// WebRTC VAD requires 10ms, 20ms, or 30ms frames.
	// For 16kHz that is 160, 320, or 480 samples.
	frameSize := w.sampleRate / 100

	if len(samples) < frameSize {
		padded := make([]int16, frameSize)
		copy(padded, samples)
		samples = padded
	}

	for i := 0; i+frameSize <= len(samples); i += frameSize {
		frame := samples[i : i+frameSize]
		frameBytes := int16ToBytes(frame)

		active, err := w.vad.Process(w.sampleRate, frameBytes)
		if err != nil {
			return false, fmt.Errorf("VAD processing failed: %w", err)
		}

		if active {
			return true, nil
		}
	}

	return false, nil
}

// int16ToBytes converts int16 slice to bytes (little-endian)
func int16ToBytes(samples []int16) []byte {
	bytes := make([]byte, len(samples)*2)
	for i, s := range samples {
		bytes[i*2] = byte(s)
		bytes[i*2+1] = byte(s >> 8)
	}
	return bytes
}

// Mode returns the current aggressiveness mode
func (w *WebRTCVAD) Mode() int {
	return w.mode
}

// SpeechTracker accumulates per-chunk VAD results over a running take
type SpeechTracker struct {
	config         VADConfig
	speechStarted  bool
	speechStart    time.Time
	speechDuration time.Duration
}

// NewSpeechTracker creates a new speech tracker
func NewSpeechTracker(cfg VADConfig) *SpeechTracker {
	return &SpeechTracker{config: cfg}
}

// Update records the VAD result for one chunk of samples
func (t *SpeechTracker) Update(isSpeech bool) {
	if !isSpeech {
		return
	}

	now := time.Now()
	if !t.speechStarted {
		t.speechStarted = true
		t.speechStart = now
		return
	}
	t.speechDuration = now.Sub(t.speechStart)
}

// HasSpeech returns true if enough speech was detected for a valid take
func (t *SpeechTracker) HasSpeech() bool {
	return t.speechStarted && t.speechDuration >= t.config.MinSpeechDuration
}

// SpeechDuration returns the detected speech duration
func (t *SpeechTracker) SpeechDuration() time.Duration {
	return t.speechDuration
}

// Reset resets the tracker for a new take
func (t *SpeechTracker) Reset() {
	t.speechStarted = false
	t.speechStart = time.Time{}
	t.speechDuration = 0
}
