package models

// ParsingResult is the outcome of a single parse attempt. A non-empty Error
// marks the result as degraded or failed; it does not preclude best-effort
// extracted text alongside it.
type ParsingResult struct {
	Text               string                   `json:"text"`
	Metadata           map[string]interface{}   `json:"metadata"`
	Pages              int                      `json:"pages"`
	Structure          map[string]interface{}   `json:"structure"`
	Error              string                   `json:"error,omitempty"`
	Tables             []map[string]interface{} `json:"tables,omitempty"`
	Images             []map[string]interface{} `json:"images,omitempty"`
	AudioTranscription string                   `json:"audio_transcription,omitempty"`
}

// NewParsingResult creates a successful result. Nil maps are normalized to
// empty maps and the page count is clamped to a minimum of 1.
func NewParsingResult(text string, metadata map[string]interface{}, pages int, structure map[string]interface{}) *ParsingResult {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	if structure == nil {
		structure = map[string]interface{}{}
	}
	if pages < 1 {
		pages = 1
	}
	return &ParsingResult{
		Text:      text,
		Metadata:  metadata,
		Pages:     pages,
		Structure: structure,
	}
}

// NewErrorParsingResult creates a failed result with empty text.
func NewErrorParsingResult(errMsg string) *ParsingResult {
	result := NewParsingResult("", nil, 1, nil)
	result.Error = errMsg
	return result
}

// Success reports whether the parse completed without a recorded error.
func (r *ParsingResult) Success() bool {
	return r.Error == ""
}

// ToMap converts the result to the plain mapping handed to callers.
// The error key is always present (nil on success); tables, images and
// audio_transcription appear only when populated.
func (r *ParsingResult) ToMap() map[string]interface{} {
	var errValue interface{}
	if r.Error != "" {
		errValue = r.Error
	}

	result := map[string]interface{}{
		"text":      r.Text,
		"metadata":  r.Metadata,
		"pages":     r.Pages,
		"structure": r.Structure,
		"success":   r.Success(),
		"error":     errValue,
	}

	if len(r.Tables) > 0 {
		result["tables"] = r.Tables
	}
	if len(r.Images) > 0 {
		result["images"] = r.Images
	}
	if r.AudioTranscription != "" {
		result["audio_transcription"] = r.AudioTranscription
	}

	return result
}

// WordCount returns the whitespace-delimited token count of the extracted text.
func (r *ParsingResult) WordCount() int {
	count := 0
	inWord := false
	for _, c := range r.Text {
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}
