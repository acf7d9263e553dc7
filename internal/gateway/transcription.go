// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     gateway
// Description: Transcription endpoint bindings
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// RecordAudio submits a locally captured take and returns the session id
func (c *Client) RecordAudio(ctx context.Context, wav []byte) (string, error) {
	var result UploadResult
	err := c.postMultipart(ctx, "record audio", "/api/transcription/record-audio",
		"audio_data", "recording.wav", bytes.NewReader(wav), nil, &result)
	if err != nil {
		return "", err
	}
	c.log.Info("recording accepted", "session", result.SessionID)
	return result.SessionID, nil
}

// UploadAudio submits an existing audio file and returns the session id
func (c *Client) UploadAudio(ctx context.Context, file io.Reader, filename string) (string, error) {
	var result UploadResult
	err := c.postMultipart(ctx, "upload audio", "/api/transcription/upload-audio",
		"audio", filename, file, nil, &result)
	if err != nil {
		return "", err
	}
	c.log.Info("upload accepted", "session", result.SessionID, "filename", filename)
	return result.SessionID, nil
}

// Transcribe runs transcription for a session and returns the up-sots
func (c *Client) Transcribe(ctx context.Context, sessionID string, params Parameters) (*TranscribeResult, error) {
	payload := map[string]interface{}{
		"parameters": params.Normalize(),
	}

	var result TranscribeResult
	path := "/api/transcription/transcribe/" + sessionID
	if err := c.postJSON(ctx, "transcribe", path, payload, &result); err != nil {
		return nil, err
	}

	c.log.Info("transcription complete",
		"session", sessionID,
		"segments", result.SegmentsCount,
		"up_sots", result.UpSotsCount)
	return &result, nil
}

// SetParameters updates extraction parameters for a session. The returned
// UpSots are nil when the session has not been transcribed yet.
func (c *Client) SetParameters(ctx context.Context, sessionID string, params Parameters) (*ParametersResult, error) {
	var result ParametersResult
	path := "/api/transcription/set-parameters/" + sessionID
	if err := c.postJSON(ctx, "set parameters", path, params.Normalize(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetScript sets the reference script for a session
func (c *Client) SetScript(ctx context.Context, sessionID, script string) (*ScriptResult, error) {
	payload := map[string]string{"script": script}

	var result ScriptResult
	path := "/api/transcription/set-script/" + sessionID
	if err := c.postJSON(ctx, "set script", path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Extract extracts up-sots directly from timecoded transcript text
func (c *Client) Extract(ctx context.Context, transcript string, opts ExtractOptions) (*ExtractResult, error) {
	payload := map[string]interface{}{
		"transcript":  transcript,
		"maxUpshots":  opts.MaxUpSots,
		"sensitivity": opts.Sensitivity,
		"sortOrder":   opts.SortOrder,
	}

	var result ExtractResult
	if err := c.postJSON(ctx, "extract", "/api/transcription/extract", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Process is the one-shot endpoint: upload, transcribe, and extract in one call
func (c *Client) Process(ctx context.Context, file io.Reader, filename string, params Parameters) (*TranscribeResult, error) {
	params = params.Normalize()
	fields := map[string]string{
		"max_upsots":        strconv.Itoa(params.UpSotCount),
		"sensitivity":       strconv.FormatFloat(params.Sensitivity, 'f', -1, 64),
		"sort_by_relevance": strconv.FormatBool(params.SortByRelevance),
	}

	var result TranscribeResult
	err := c.postMultipart(ctx, "process audio", "/api/transcription/process",
		"audio", filename, file, fields, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateOutput generates the selected output files for a session
func (c *Client) GenerateOutput(ctx context.Context, sessionID string, formats Formats) (*OutputResult, error) {
	payload := map[string]interface{}{"formats": formats}

	var result OutputResult
	path := "/api/transcription/generate-output/" + sessionID
	if err := c.postJSON(ctx, "generate output", path, payload, &result); err != nil {
		return nil, err
	}

	c.log.Info("outputs generated", "session", sessionID, "formats", result.Formats)
	return &result, nil
}

// Download fetches a generated output file
func (c *Client) Download(ctx context.Context, sessionID, format string) ([]byte, error) {
	op := "download " + format
	path := fmt.Sprintf("/api/transcription/download/%s/%s", sessionID, format)

	status, body, err := c.call(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	// Errors come back as a JSON envelope, file content does not
	if status != http.StatusOK {
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			return nil, &BackendError{Op: op, Message: env.Error, Status: status}
		}
		return nil, &BackendError{Op: op, Message: http.StatusText(status), Status: status}
	}

	return body, nil
}

// SendEmail mails the generated outputs to a recipient
func (c *Client) SendEmail(ctx context.Context, sessionID string, req EmailRequest) error {
	path := "/api/transcription/send-email/" + sessionID
	if err := c.postJSON(ctx, "send email", path, req, nil); err != nil {
		return err
	}
	c.log.Info("email sent", "session", sessionID, "recipient", req.Email)
	return nil
}

// SessionInfo fetches the backend's view of a session
func (c *Client) SessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var result struct {
		SessionInfo SessionInfo `json:"session_info"`
	}
	path := "/api/transcription/session-info/" + sessionID
	if err := c.get(ctx, "session info", path, &result); err != nil {
		return nil, err
	}
	return &result.SessionInfo, nil
}

// Microphones lists the input devices the backend knows about
func (c *Client) Microphones(ctx context.Context) ([]Microphone, error) {
	var result struct {
		Microphones []Microphone `json:"microphones"`
	}
	if err := c.get(ctx, "list microphones", "/api/transcription/get-available-microphones", &result); err != nil {
		return nil, err
	}
	return result.Microphones, nil
}
