package models

import (
	"time"
)

// LibraryStats is an aggregate snapshot of the document library. Snapshots
// are persisted under a well-known key and refreshed on a schedule.
type LibraryStats struct {
	TotalDocuments int `json:"total_documents"`

	// Counts keyed by educational document type
	ByDocumentType map[string]int `json:"by_document_type"`

	// Counts keyed by record status (uploaded, analyzed, failed)
	ByStatus map[string]int `json:"by_status"`

	TotalWordCount   int     `json:"total_word_count"`
	AverageWordCount float64 `json:"average_word_count"`
	TotalFileBytes   int64   `json:"total_file_bytes"`

	AnalyzedDocuments int `json:"analyzed_documents"`
	FailedParses      int `json:"failed_parses"`

	GeneratedAt time.Time `json:"generated_at"`
}

// NewLibraryStats creates an empty snapshot stamped with the current time.
func NewLibraryStats() *LibraryStats {
	return &LibraryStats{
		ByDocumentType: make(map[string]int),
		ByStatus:       make(map[string]int),
		GeneratedAt:    time.Now().UTC(),
	}
}
