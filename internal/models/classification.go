package models

import "fmt"

// EducationalDocumentType is the closed set of document categories the
// classifier can assign. Assigned once per analysis, never mutated afterward.
type EducationalDocumentType string

const (
	DocTypeUnknown      EducationalDocumentType = "unknown"
	DocTypeSyllabus     EducationalDocumentType = "syllabus"
	DocTypeLectureNotes EducationalDocumentType = "lecture_notes"
	DocTypeWorksheet    EducationalDocumentType = "worksheet"
	DocTypeExam         EducationalDocumentType = "exam"
	DocTypeTextbook     EducationalDocumentType = "textbook"
	DocTypeLessonPlan   EducationalDocumentType = "lesson_plan"
)

// ParseEducationalDocumentType validates a document type string received
// from a caller or a rule pack.
func ParseEducationalDocumentType(s string) (EducationalDocumentType, error) {
	switch EducationalDocumentType(s) {
	case DocTypeUnknown, DocTypeSyllabus, DocTypeLectureNotes, DocTypeWorksheet,
		DocTypeExam, DocTypeTextbook, DocTypeLessonPlan:
		return EducationalDocumentType(s), nil
	default:
		return "", fmt.Errorf("unknown educational document type: %q", s)
	}
}

// QuestionOption is a single labeled choice belonging to a question.
type QuestionOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is one extracted question record. Built incrementally while
// scanning lines; appended to the result list when a new question marker is
// found or the text ends.
type Question struct {
	Number       string           `json:"number"`
	Text         string           `json:"text"`
	Options      []QuestionOption `json:"options"`
	SubQuestions []*Question      `json:"sub_questions"`
}

// NewQuestion creates a question with empty option and sub-question lists so
// serialization always carries the full field set.
func NewQuestion(number, text string) *Question {
	return &Question{
		Number:       number,
		Text:         text,
		Options:      []QuestionOption{},
		SubQuestions: []*Question{},
	}
}

// Classification is the educational content classifier's output.
type Classification struct {
	DocumentType        EducationalDocumentType `json:"document_type"`
	EducationalElements map[string]interface{}  `json:"educational_elements"`
	StructureAnalysis   map[string]interface{}  `json:"structure_analysis"`
	AIEnhancedAnalysis  map[string]interface{}  `json:"ai_enhanced_analysis,omitempty"`
	AIAnalysisError     string                  `json:"ai_analysis_error,omitempty"`
}

// NewClassification creates an unknown-type classification with empty element maps.
func NewClassification() *Classification {
	return &Classification{
		DocumentType:        DocTypeUnknown,
		EducationalElements: map[string]interface{}{},
		StructureAnalysis:   map[string]interface{}{},
	}
}

// ToMap converts the classification to the plain mapping handed to callers.
// The AI keys appear only when the enhancement step ran.
func (c *Classification) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"document_type":        string(c.DocumentType),
		"educational_elements": c.EducationalElements,
		"structure_analysis":   c.StructureAnalysis,
	}

	if c.AIEnhancedAnalysis != nil {
		result["ai_enhanced_analysis"] = c.AIEnhancedAnalysis
	}
	if c.AIAnalysisError != "" {
		result["ai_analysis_error"] = c.AIAnalysisError
	}

	return result
}
