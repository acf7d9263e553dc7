// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     capture
// Description: Input device enumeration
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device holds information about an audio input device
type Device struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices returns the available input devices
func ListInputDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	defaultInput, _ := portaudio.DefaultInputDevice()
	var defaultInputName string
	if defaultInput != nil {
		defaultInputName = defaultInput.Name
	}

	var inputDevices []Device
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			inputDevices = append(inputDevices, Device{
				Name:              dev.Name,
				MaxInputChannels:  dev.MaxInputChannels,
				DefaultSampleRate: dev.DefaultSampleRate,
				IsDefault:         dev.Name == defaultInputName,
			})
		}
	}

	return inputDevices, nil
}
