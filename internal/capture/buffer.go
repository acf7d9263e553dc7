// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     capture
// Description: Sample buffer utilities
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package capture

import (
	"math"
	"sync"
)

// Buffer is a growing buffer collecting the samples of one take
type Buffer struct {
	mu      sync.RWMutex
	samples []float32
}

// NewBuffer creates a new sample buffer
func NewBuffer() *Buffer {
	return &Buffer{
		samples: make([]float32, 0, 16000*30), // Pre-allocate for ~30 seconds at 16kHz
	}
}

// Append adds samples to the buffer
func (b *Buffer) Append(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, samples...)
}

// Get returns a copy of all samples
func (b *Buffer) Get() []float32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]float32, len(b.samples))
	copy(result, b.samples)
	return result
}

// Len returns the number of samples
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// DurationSeconds returns the duration in seconds at the given sample rate
func (b *Buffer) DurationSeconds(sampleRate float64) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return float64(len(b.samples)) / sampleRate
}

// Level returns the RMS level of the newest window samples, in [0, 1].
// Drives the VU meter while a take is running.
func (b *Buffer) Level(window int) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.samples) == 0 || window <= 0 {
		return 0
	}

	start := len(b.samples) - window
	if start < 0 {
		start = 0
	}

	var sum float64
	for _, s := range b.samples[start:] {
		sum += float64(s) * float64(s)
	}

	return math.Sqrt(sum / float64(len(b.samples)-start))
}

// Clear clears the buffer
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

// Reset resets the buffer with a new capacity hint
func (b *Buffer) Reset(capacityHint int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = make([]float32, 0, capacityHint)
}
