package session

import (
	"testing"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "Idle"},
		{StateCapturing, "Recording"},
		{StateUploading, "Uploading"},
		{StateTranscribing, "Transcribing"},
		{StateReady, "Ready"},
		{StateExporting, "Exporting"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStateMachine_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"idle to capturing", StateIdle, StateCapturing, true},
		{"idle to uploading", StateIdle, StateUploading, true},
		{"idle to transcribing", StateIdle, StateTranscribing, true},
		{"idle to ready", StateIdle, StateReady, false},
		{"capturing to uploading", StateCapturing, StateUploading, true},
		{"capturing to ready", StateCapturing, StateReady, false},
		{"uploading to transcribing", StateUploading, StateTranscribing, true},
		{"transcribing to ready", StateTranscribing, StateReady, true},
		{"ready to exporting", StateReady, StateExporting, true},
		{"exporting to ready", StateExporting, StateReady, true},
		{"ready to capturing", StateReady, StateCapturing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			sm.currentState = tt.from

			if got := sm.Transition(tt.to); got != tt.want {
				t.Errorf("Transition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}

			if tt.want && sm.Current() != tt.to {
				t.Errorf("Current() = %v after valid transition, want %v", sm.Current(), tt.to)
			}
			if !tt.want && sm.Current() != tt.from {
				t.Errorf("Current() = %v after rejected transition, want %v", sm.Current(), tt.from)
			}
		})
	}
}

func TestStateMachine_ResetFromAnyState(t *testing.T) {
	states := []State{StateCapturing, StateUploading, StateTranscribing, StateReady, StateExporting}

	for _, s := range states {
		t.Run(s.String(), func(t *testing.T) {
			sm := NewStateMachine()
			sm.currentState = s

			sm.Reset()

			if sm.Current() != StateIdle {
				t.Errorf("Current() = %v after Reset, want Idle", sm.Current())
			}
			if sm.Previous() != s {
				t.Errorf("Previous() = %v, want %v", sm.Previous(), s)
			}
		})
	}
}

func TestStateMachine_Listener(t *testing.T) {
	sm := NewStateMachine()

	var gotOld, gotNew State
	called := false
	sm.AddListener(func(oldState, newState State) {
		called = true
		gotOld = oldState
		gotNew = newState
	})

	sm.Transition(StateCapturing)

	if !called {
		t.Fatal("listener not called on transition")
	}
	if gotOld != StateIdle || gotNew != StateCapturing {
		t.Errorf("listener got %v -> %v, want Idle -> Recording", gotOld, gotNew)
	}
}

func TestStateMachine_ListenerNotCalledOnRejectedTransition(t *testing.T) {
	sm := NewStateMachine()

	called := false
	sm.AddListener(func(oldState, newState State) {
		called = true
	})

	sm.Transition(StateReady) // invalid from Idle

	if called {
		t.Error("listener should not fire on rejected transition")
	}
}

func TestStateMachine_IsBusy(t *testing.T) {
	sm := NewStateMachine()

	if sm.IsBusy() {
		t.Error("Idle should not be busy")
	}

	sm.Transition(StateCapturing)
	if !sm.IsBusy() {
		t.Error("Capturing should be busy")
	}

	sm.currentState = StateReady
	if sm.IsBusy() {
		t.Error("Ready should not be busy")
	}
}
