// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     gateway
// Description: Audio library endpoint bindings
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package gateway

import (
	"context"
)

// SaveRecording stores the session's recording permanently in the library
func (c *Client) SaveRecording(ctx context.Context, sessionID string, metadata map[string]string) (*Recording, error) {
	payload := map[string]interface{}{
		"session_id": sessionID,
	}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	var result struct {
		RecordingID string    `json:"recording_id"`
		Info        Recording `json:"info"`
	}
	if err := c.postJSON(ctx, "save recording", "/api/audio-library/save-recording", payload, &result); err != nil {
		return nil, err
	}

	if result.Info.ID == "" {
		result.Info.ID = result.RecordingID
	}
	c.log.Info("recording saved to library", "recording", result.Info.ID)
	return &result.Info, nil
}

// ListRecordings returns all recordings in the library
func (c *Client) ListRecordings(ctx context.Context) ([]Recording, error) {
	var result struct {
		Recordings []Recording `json:"recordings"`
	}
	if err := c.get(ctx, "list recordings", "/api/audio-library/get-all-recordings", &result); err != nil {
		return nil, err
	}
	return result.Recordings, nil
}

// GetRecording returns one recording by id
func (c *Client) GetRecording(ctx context.Context, recordingID string) (*Recording, error) {
	var result struct {
		Recording Recording `json:"recording"`
	}
	path := "/api/audio-library/get-recording/" + recordingID
	if err := c.get(ctx, "get recording", path, &result); err != nil {
		return nil, err
	}
	return &result.Recording, nil
}

// DeleteRecording removes a recording from the library
func (c *Client) DeleteRecording(ctx context.Context, recordingID string) error {
	path := "/api/audio-library/delete-recording/" + recordingID
	if err := c.del(ctx, "delete recording", path, nil); err != nil {
		return err
	}
	c.log.Info("recording deleted", "recording", recordingID)
	return nil
}

// Retranscribe runs a fresh transcription of a stored recording
func (c *Client) Retranscribe(ctx context.Context, recordingID string, params Parameters) (*RetranscribeResult, error) {
	params = params.Normalize()
	payload := map[string]interface{}{
		"parameters": map[string]interface{}{
			"max_count":         params.UpSotCount,
			"sensitivity":       params.Sensitivity,
			"sort_by_relevance": params.SortByRelevance,
		},
	}

	var result RetranscribeResult
	path := "/api/audio-library/retranscribe/" + recordingID
	if err := c.postJSON(ctx, "retranscribe", path, payload, &result); err != nil {
		return nil, err
	}

	c.log.Info("retranscription complete", "recording", recordingID, "up_sots", len(result.UpSots))
	return &result, nil
}
