package interfaces

import (
	"context"
)

// QuestionRequest describes a question generation task.
type QuestionRequest struct {
	Content         string `json:"content"`          // Source material to generate from
	Topic           string `json:"topic"`            // Subject of the questions
	QuestionCount   int    `json:"question_count"`   // How many questions to produce
	QuestionType    string `json:"question_type"`    // multiple-choice, short-answer, essay, true-false
	DifficultyLevel string `json:"difficulty_level"` // elementary through advanced
}

// QuestionService generates assessment questions from document content
// using the AI capability and the question_generation prompt template.
type QuestionService interface {
	// Generate produces questions for the request. The response is the
	// decoded provider JSON, or a raw_response wrapper when the provider
	// returned non-JSON text.
	Generate(ctx context.Context, req QuestionRequest) (map[string]interface{}, error)
}
