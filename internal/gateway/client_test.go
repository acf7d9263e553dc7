package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL})
	return client, server
}

func TestClient_UploadAudio(t *testing.T) {
	var gotField string
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcription/upload-audio" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		if _, _, err := r.FormFile("audio"); err == nil {
			gotField = "audio"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"session_id": "sess-1",
		})
	}))
	defer server.Close()

	sessionID, err := client.UploadAudio(context.Background(), strings.NewReader("RIFF...."), "interview.wav")
	if err != nil {
		t.Fatalf("UploadAudio() error = %v", err)
	}
	if sessionID != "sess-1" {
		t.Errorf("sessionID = %v, want sess-1", sessionID)
	}
	if gotField != "audio" {
		t.Error("upload should use the audio multipart field")
	}
}

func TestClient_RecordAudio_FieldName(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("audio_data"); err != nil {
			t.Errorf("record-audio should use the audio_data field: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"session_id": "sess-2",
		})
	}))
	defer server.Close()

	sessionID, err := client.RecordAudio(context.Background(), []byte("RIFF...."))
	if err != nil {
		t.Fatalf("RecordAudio() error = %v", err)
	}
	if sessionID != "sess-2" {
		t.Errorf("sessionID = %v, want sess-2", sessionID)
	}
}

func TestClient_Transcribe(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcription/transcribe/sess-1" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"session_id":      "sess-1",
			"segments_count":  12,
			"up_sots_count":   2,
			"full_transcript": "full text",
			"up_sots": []map[string]interface{}{
				{"timecode": "00:00:05", "text": "first moment", "relevance": 0.9},
				{"timecode": "00:01:10", "text": "second moment", "relevance": 0.7},
			},
		})
	}))
	defer server.Close()

	result, err := client.Transcribe(context.Background(), "sess-1", DefaultParameters())
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if len(result.UpSots) != 2 {
		t.Fatalf("got %v up-sots, want 2", len(result.UpSots))
	}
	if result.UpSots[0].Timecode != "00:00:05" {
		t.Errorf("first timecode = %v", result.UpSots[0].Timecode)
	}
	if result.FullTranscript != "full text" {
		t.Errorf("full transcript = %v", result.FullTranscript)
	}
}

func TestClient_EnvelopeFailure(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Session not found",
		})
	}))
	defer server.Close()

	_, err := client.Transcribe(context.Background(), "missing", DefaultParameters())
	if err == nil {
		t.Fatal("expected error for success:false response")
	}

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Message != "Session not found" {
		t.Errorf("Message = %v", backendErr.Message)
	}
	if backendErr.Status != http.StatusNotFound {
		t.Errorf("Status = %v, want 404", backendErr.Status)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := client.Transcribe(context.Background(), "sess-1", DefaultParameters())

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if !strings.Contains(backendErr.Message, "invalid response") {
		t.Errorf("Message = %v", backendErr.Message)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{BaseURL: server.URL})
	server.Close() // connection refused from here on

	_, err := client.Microphones(context.Background())

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Status != 0 {
		t.Errorf("transport failure Status = %v, want 0", backendErr.Status)
	}
}

func TestClient_Download(t *testing.T) {
	fileContent := []byte("TITLE: EDL Export\n001 AX")
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcription/download/sess-1/edl" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		w.Write(fileContent)
	}))
	defer server.Close()

	data, err := client.Download(context.Background(), "sess-1", "edl")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if !bytes.Equal(data, fileContent) {
		t.Errorf("downloaded content = %q", data)
	}
}

func TestClient_Download_ErrorEnvelope(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "No PDF output available",
		})
	}))
	defer server.Close()

	_, err := client.Download(context.Background(), "sess-1", "pdf")

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Message != "No PDF output available" {
		t.Errorf("Message = %v", backendErr.Message)
	}
}

func TestClient_SetParameters_SendsClampedValues(t *testing.T) {
	var got Parameters
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"parameters": got,
		})
	}))
	defer server.Close()

	_, err := client.SetParameters(context.Background(), "sess-1", Parameters{
		UpSotCount:  99,
		Sensitivity: 2.5,
	})
	if err != nil {
		t.Fatalf("SetParameters() error = %v", err)
	}

	if got.UpSotCount != 30 {
		t.Errorf("sent count = %v, want 30", got.UpSotCount)
	}
	if got.Sensitivity != 1.0 {
		t.Errorf("sent sensitivity = %v, want 1.0", got.Sensitivity)
	}
}

func TestClient_Extract_WireShape(t *testing.T) {
	var got map[string]interface{}
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcription/extract" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"count":   1,
			"up_sots": []map[string]interface{}{
				{"timecode": "00:00:12", "text": "quotable moment", "relevance": 0.8},
			},
		})
	}))
	defer server.Close()

	result, err := client.Extract(context.Background(), "[00:00:12] quotable moment", ExtractOptions{
		MaxUpSots:   5,
		Sensitivity: 0.7,
		SortOrder:   SortRelevance,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// The extract endpoint uses camelCase field names, unlike the rest
	if got["maxUpshots"] != float64(5) {
		t.Errorf("maxUpshots = %v, want 5", got["maxUpshots"])
	}
	if got["sensitivity"] != 0.7 {
		t.Errorf("sensitivity = %v, want 0.7", got["sensitivity"])
	}
	if got["sortOrder"] != "relevance" {
		t.Errorf("sortOrder = %v, want relevance", got["sortOrder"])
	}
	if got["transcript"] != "[00:00:12] quotable moment" {
		t.Errorf("transcript = %v", got["transcript"])
	}

	if result.Count != 1 || len(result.UpSots) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.UpSots[0].Timecode != "00:00:12" {
		t.Errorf("timecode = %v", result.UpSots[0].Timecode)
	}
}

func TestClient_SessionInfo(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcription/session-info/sess-1" {
			t.Errorf("unexpected path: %v", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"session_info": map[string]interface{}{
				"session_id":        "sess-1",
				"status":            "transcribed",
				"segments_count":    12,
				"available_formats": []string{"txt", "edl"},
			},
		})
	}))
	defer server.Close()

	info, err := client.SessionInfo(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("SessionInfo() error = %v", err)
	}
	if info.Status != "transcribed" || info.SegmentsCount != 12 {
		t.Errorf("info = %+v", info)
	}
	if len(info.AvailableFormats) != 2 {
		t.Errorf("available formats = %v", info.AvailableFormats)
	}
}

func TestClient_SendEmail(t *testing.T) {
	var gotReq EmailRequest
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer server.Close()

	err := client.SendEmail(context.Background(), "sess-1", EmailRequest{
		Email:      "editor@example.com",
		IncludeTXT: true,
	})
	if err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}
	if gotReq.Email != "editor@example.com" {
		t.Errorf("sent email = %v", gotReq.Email)
	}
	if !gotReq.IncludeTXT {
		t.Error("include_txt should be set")
	}
}

func TestClient_DeleteRecording(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %v, want DELETE", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer server.Close()

	if err := client.DeleteRecording(context.Background(), "rec-1"); err != nil {
		t.Fatalf("DeleteRecording() error = %v", err)
	}
}

func TestClient_ListRecordings(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"recordings": []map[string]interface{}{
				{"id": "rec-1", "filename": "recording_1.wav", "size_bytes": 1024},
			},
		})
	}))
	defer server.Close()

	recordings, err := client.ListRecordings(context.Background())
	if err != nil {
		t.Fatalf("ListRecordings() error = %v", err)
	}
	if len(recordings) != 1 || recordings[0].ID != "rec-1" {
		t.Errorf("recordings = %+v", recordings)
	}
}
