package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewStagedFileID generates a unique name for a staged conversion file.
// The extension (if any) is preserved so path-based converters can sniff it.
func NewStagedFileID(ext string) string {
	return "stage_" + uuid.New().String() + ext
}
