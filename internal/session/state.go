// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     session
// Description: Session lifecycle state machine
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package session

import (
	"sync"
	"time"
)

// State represents the current phase of the recording session
type State int

const (
	// StateIdle - no active session, ready for a new take or upload
	StateIdle State = iota

	// StateCapturing - microphone is recording
	StateCapturing

	// StateUploading - audio is being sent to the backend
	StateUploading

	// StateTranscribing - backend is transcribing and extracting
	StateTranscribing

	// StateReady - up-sots available, parameters and script adjustable
	StateReady

	// StateExporting - output generation in progress
	StateExporting
)

// String returns the display name of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCapturing:
		return "Recording"
	case StateUploading:
		return "Uploading"
	case StateTranscribing:
		return "Transcribing"
	case StateReady:
		return "Ready"
	case StateExporting:
		return "Exporting"
	default:
		return "Unknown"
	}
}

// Icon returns a transport-style icon for the state
func (s State) Icon() string {
	switch s {
	case StateIdle:
		return "⏹"
	case StateCapturing:
		return "⏺"
	case StateUploading:
		return "⏏"
	case StateTranscribing:
		return "⚙"
	case StateReady:
		return "▶"
	case StateExporting:
		return "⏩"
	default:
		return "?"
	}
}

// IsBusy reports whether the state has a backend operation in flight
func (s State) IsBusy() bool {
	return s == StateUploading || s == StateTranscribing || s == StateExporting
}

// StateMachine manages session state transitions
type StateMachine struct {
	mu            sync.RWMutex
	currentState  State
	previousState State
	stateTime     time.Time
	listeners     []StateChangeListener
}

// StateChangeListener is called when state changes
type StateChangeListener func(oldState, newState State)

// NewStateMachine creates a new state machine starting in Idle
func NewStateMachine() *StateMachine {
	return &StateMachine{
		currentState: StateIdle,
		stateTime:    time.Now(),
		listeners:    make([]StateChangeListener, 0),
	}
}

// Current returns the current state
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// Previous returns the previous state
func (sm *StateMachine) Previous() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.previousState
}

// StateDuration returns how long the current state has been active
func (sm *StateMachine) StateDuration() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return time.Since(sm.stateTime)
}

// Transition changes to a new state if the transition is valid
func (sm *StateMachine) Transition(newState State) bool {
	sm.mu.Lock()
	oldState := sm.currentState

	if !sm.isValidTransition(oldState, newState) {
		sm.mu.Unlock()
		return false
	}

	sm.previousState = oldState
	sm.currentState = newState
	sm.stateTime = time.Now()
	listeners := sm.listeners
	sm.mu.Unlock()

	for _, listener := range listeners {
		listener(oldState, newState)
	}

	return true
}

// AddListener adds a state change listener
func (sm *StateMachine) AddListener(listener StateChangeListener) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.listeners = append(sm.listeners, listener)
}

// isValidTransition checks if a state transition is valid.
// Eject goes through Reset, so Idle does not appear as a target everywhere.
func (sm *StateMachine) isValidTransition(from, to State) bool {
	validTransitions := map[State][]State{
		StateIdle:         {StateCapturing, StateUploading, StateTranscribing},
		StateCapturing:    {StateUploading, StateIdle},
		StateUploading:    {StateTranscribing, StateIdle},
		StateTranscribing: {StateReady, StateIdle},
		StateReady:        {StateExporting, StateIdle},
		StateExporting:    {StateReady, StateIdle},
	}

	validTargets, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, valid := range validTargets {
		if valid == to {
			return true
		}
	}

	return false
}

// Reset returns the machine to Idle from any state
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	oldState := sm.currentState
	sm.previousState = oldState
	sm.currentState = StateIdle
	sm.stateTime = time.Now()
	listeners := sm.listeners
	sm.mu.Unlock()

	for _, listener := range listeners {
		listener(oldState, StateIdle)
	}
}

// IsBusy returns true while a backend operation or capture is in progress
func (sm *StateMachine) IsBusy() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	switch sm.currentState {
	case StateCapturing, StateUploading, StateTranscribing, StateExporting:
		return true
	}
	return false
}
