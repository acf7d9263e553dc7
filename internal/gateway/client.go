// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     gateway
// Description: HTTP client for the transcription backend
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
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/msto63/retroscribe/pkg/core/logging"
	"github.com/msto63/retroscribe/pkg/core/version"
)

// BackendError is the single error type for all backend failures
type BackendError struct {
	Op      string // which operation failed
	Message string // human-readable cause
	Status  int    // HTTP status, 0 for transport failures
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Config holds backend client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000",
		Timeout: 120 * time.Second,
	}
}

// Client talks to the transcription backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logging.Logger
}

// NewClient creates a new backend client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultConfig().Timeout
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultConfig().BaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.New("gateway"),
	}
}

// envelope is the success/error wrapper every backend response carries
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// call performs a request and returns status and raw body
func (c *Client) call(ctx context.Context, op, method, path string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, &BackendError{Op: op, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &BackendError{Op: op, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &BackendError{Op: op, Message: fmt.Sprintf("failed to read response: %v", err), Status: resp.StatusCode}
	}

	return resp.StatusCode, respBody, nil
}

// decodeResponse validates the envelope and decodes the full payload into out
func decodeResponse(op string, status int, body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &BackendError{Op: op, Message: "invalid response from backend", Status: status}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &BackendError{Op: op, Message: msg, Status: status}
	}

	if status < 200 || status >= 300 {
		return &BackendError{Op: op, Message: http.StatusText(status), Status: status}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &BackendError{Op: op, Message: "invalid response from backend", Status: status}
	}
	return nil
}

// postJSON sends a JSON payload and decodes the enveloped response
func (c *Client) postJSON(ctx context.Context, op, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &BackendError{Op: op, Message: fmt.Sprintf("failed to marshal request: %v", err)}
		}
		body = bytes.NewReader(data)
	}

	status, respBody, err := c.call(ctx, op, http.MethodPost, path, body, "application/json")
	if err != nil {
		return err
	}
	return decodeResponse(op, status, respBody, out)
}

// get performs a GET and decodes the enveloped response
func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	status, respBody, err := c.call(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decodeResponse(op, status, respBody, out)
}

// del performs a DELETE and decodes the enveloped response
func (c *Client) del(ctx context.Context, op, path string, out interface{}) error {
	status, respBody, err := c.call(ctx, op, http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	return decodeResponse(op, status, respBody, out)
}

// postMultipart uploads a file part plus optional form fields
func (c *Client) postMultipart(ctx context.Context, op, path, fieldName, filename string, file io.Reader, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, filename)
	if err != nil {
		return &BackendError{Op: op, Message: fmt.Sprintf("failed to build upload: %v", err)}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &BackendError{Op: op, Message: fmt.Sprintf("failed to read audio: %v", err)}
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return &BackendError{Op: op, Message: fmt.Sprintf("failed to build upload: %v", err)}
		}
	}

	if err := writer.Close(); err != nil {
		return &BackendError{Op: op, Message: fmt.Sprintf("failed to build upload: %v", err)}
	}

	status, respBody, err := c.call(ctx, op, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeResponse(op, status, respBody, out)
}
