package models

import (
	"time"
)

// Document statuses track a library record through its lifecycle.
const (
	// DocumentStatusUploaded means the file is stored and parsed but not yet analyzed
	DocumentStatusUploaded = "uploaded"
	// DocumentStatusAnalyzed means AI analysis completed and is stored on the record
	DocumentStatusAnalyzed = "analyzed"
	// DocumentStatusFailed means parsing failed; the raw file is still retained
	DocumentStatusFailed = "failed"
)

// Document is a library record for an uploaded file: identity, storage
// location, parse outcome and the most recent analysis.
type Document struct {
	// Identity
	ID          string `json:"id"` // doc_{uuid}
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"` // Normalized MIME type
	FileSize    int64  `json:"file_size"`

	// Storage
	StoragePath string `json:"storage_path"` // Relative date-sharded path under the files root

	// Parse outcome
	PageCount  int    `json:"page_count"`
	WordCount  int    `json:"word_count"`
	ParseError string `json:"parse_error,omitempty"`

	// Classification and analysis
	DocumentType  string          `json:"document_type"` // Educational document type, "unknown" until analyzed
	AnalysisDepth string          `json:"analysis_depth,omitempty"`
	Analysis      *AnalysisResult `json:"analysis,omitempty"`

	// Caller-supplied metadata (title, subject, grade level, tags)
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	Status string `json:"status"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the modification timestamp.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}
