// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     session
// Description: Session failure taxonomy
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package session

import (
	"errors"
	"fmt"
)

// FailureKind classifies what went wrong in a session operation
type FailureKind int

const (
	FailCapture FailureKind = iota
	FailEmptyRecording
	FailUpload
	FailTranscription
	FailParameterUpdate
	FailScriptApply
	FailExport
	FailEmail
	FailLibrary
	FailValidation
)

// String returns the display name of the failure kind
func (k FailureKind) String() string {
	switch k {
	case FailCapture:
		return "capture failed"
	case FailEmptyRecording:
		return "empty recording"
	case FailUpload:
		return "upload failed"
	case FailTranscription:
		return "transcription failed"
	case FailParameterUpdate:
		return "parameter update failed"
	case FailScriptApply:
		return "script apply failed"
	case FailExport:
		return "export failed"
	case FailEmail:
		return "email failed"
	case FailLibrary:
		return "library operation failed"
	case FailValidation:
		return "invalid request"
	default:
		return "session error"
	}
}

// Failure wraps an underlying error with its session-level classification
type Failure struct {
	Kind FailureKind
	Err  error
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

// Unwrap returns the underlying error
func (f *Failure) Unwrap() error {
	return f.Err
}

// fail builds a classified failure
func fail(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// failf builds a classified failure from a format string
func failf(kind FailureKind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err is a Failure of the given kind
func IsKind(err error, kind FailureKind) bool {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}
