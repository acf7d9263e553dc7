// ============================================================================
// RetroScribe - Interview Up-Sot Extraction Client
// ============================================================================
//
// Package:     gateway
// Description: Wire types shared with the transcription backend
// Author:      Mike Stoffels
// Created:     2026-08-14
// License:     MIT
// ============================================================================

package gateway

// Moment is one timecoded up-sot in a transcript
type Moment struct {
	Timecode  string  `json:"timecode"`
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
}

// Parameters controls up-sot extraction for a session
type Parameters struct {
	UpSotCount      int     `json:"up_sots_count"`
	Sensitivity     float64 `json:"sensitivity"`
	SortByRelevance bool    `json:"sort_by_relevance"`
}

// DefaultParameters returns the backend's default extraction parameters
func DefaultParameters() Parameters {
	return Parameters{
		UpSotCount:  10,
		Sensitivity: 0.5,
	}
}

// Normalize clamps parameters into their valid ranges.
// Count is 0..30, sensitivity 0.0..1.0, matching the backend's own clamping.
func (p Parameters) Normalize() Parameters {
	if p.UpSotCount < 0 {
		p.UpSotCount = 0
	}
	if p.UpSotCount > 30 {
		p.UpSotCount = 30
	}
	if p.Sensitivity < 0.0 {
		p.Sensitivity = 0.0
	}
	if p.Sensitivity > 1.0 {
		p.Sensitivity = 1.0
	}
	return p
}

// Formats selects the output files to generate
type Formats struct {
	TXT bool `json:"txt"`
	PDF bool `json:"pdf"`
	EDL bool `json:"edl"`
}

// Any reports whether at least one format is selected
func (f Formats) Any() bool {
	return f.TXT || f.PDF || f.EDL
}

// List returns the selected format names
func (f Formats) List() []string {
	var out []string
	if f.TXT {
		out = append(out, "txt")
	}
	if f.PDF {
		out = append(out, "pdf")
	}
	if f.EDL {
		out = append(out, "edl")
	}
	return out
}

// Sort orders accepted by the extract endpoint
const (
	SortChronological = "chronological"
	SortRelevance     = "relevance"
)

// ExtractOptions controls direct transcript extraction
type ExtractOptions struct {
	MaxUpSots   int     `json:"maxUpshots"`
	Sensitivity float64 `json:"sensitivity"`
	SortOrder   string  `json:"sortOrder"`
}

// UploadResult is returned by upload-audio and record-audio
type UploadResult struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// TranscribeResult is returned by transcribe and process
type TranscribeResult struct {
	SessionID      string   `json:"session_id"`
	SegmentsCount  int      `json:"segments_count"`
	UpSotsCount    int      `json:"up_sots_count"`
	UpSots         []Moment `json:"up_sots"`
	FullTranscript string   `json:"full_transcript"`
}

// ParametersResult is returned by set-parameters. UpSots is nil when the
// session has no transcription yet.
type ParametersResult struct {
	Parameters Parameters `json:"parameters"`
	UpSots     []Moment   `json:"up_sots"`
}

// ScriptInfo describes the accepted reference script
type ScriptInfo struct {
	SentenceCount int `json:"sentence_count"`
	KeywordCount  int `json:"keyword_count"`
}

// ScriptResult is returned by set-script. UpSots is nil unless relevance
// sorting re-scored the session.
type ScriptResult struct {
	ScriptInfo ScriptInfo `json:"script_info"`
	UpSots     []Moment   `json:"up_sots"`
}

// ExtractResult is returned by extract
type ExtractResult struct {
	UpSots []Moment `json:"up_sots"`
	Count  int      `json:"count"`
}

// OutputResult is returned by generate-output
type OutputResult struct {
	Formats      []string          `json:"formats"`
	DownloadURLs map[string]string `json:"download_urls"`
}

// EmailRequest asks the backend to mail the generated outputs
type EmailRequest struct {
	Email      string `json:"email"`
	Subject    string `json:"subject,omitempty"`
	Body       string `json:"body,omitempty"`
	IncludeTXT bool   `json:"include_txt"`
	IncludePDF bool   `json:"include_pdf"`
}

// SessionInfo describes the backend's view of a session
type SessionInfo struct {
	SessionID        string     `json:"session_id"`
	Timestamp        string     `json:"timestamp"`
	Status           string     `json:"status"`
	Parameters       Parameters `json:"parameters"`
	SegmentsCount    int        `json:"segments_count"`
	FullTranscript   string     `json:"full_transcript"`
	UpSotsCount      int        `json:"up_sots_count"`
	UpSots           []Moment   `json:"up_sots"`
	AvailableFormats []string   `json:"available_formats"`
}

// Microphone is one backend-reported input device
type Microphone struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	IsDefault bool   `json:"isDefault"`
}

// Recording is one entry in the audio library
type Recording struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Title       string `json:"title,omitempty"`
	Timestamp   string `json:"timestamp"`
	DateCreated string `json:"date_created"`
	SizeBytes   int64  `json:"size_bytes"`
}

// RetranscribeResult is returned by the library retranscribe endpoint
type RetranscribeResult struct {
	Transcription struct {
		FullTranscript string `json:"full_transcript"`
	} `json:"transcription"`
	UpSots []Moment `json:"up_sots"`
}
