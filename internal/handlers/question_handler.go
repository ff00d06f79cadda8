// -----------------------------------------------------------------------
// Question Handler - assessment question generation endpoint
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// questionRequest is the validated body of POST /api/questions/generate.
type questionRequest struct {
	Content         string `json:"content" validate:"required"`
	Topic           string `json:"topic"`
	QuestionCount   int    `json:"question_count" validate:"omitempty,min=1,max=50"`
	QuestionType    string `json:"question_type" validate:"omitempty,oneof=multiple-choice short-answer essay true-false"`
	DifficultyLevel string `json:"difficulty_level" validate:"omitempty,oneof=elementary intermediate advanced"`
}

// QuestionHandler serves question generation requests.
type QuestionHandler struct {
	questions interfaces.QuestionService
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewQuestionHandler creates the question handler.
func NewQuestionHandler(questions interfaces.QuestionService, logger arbor.ILogger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		validate:  validator.New(),
		logger:    logger,
	}
}

// GenerateHandler handles POST /api/questions/generate.
func (h *QuestionHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.questions.Generate(r.Context(), interfaces.QuestionRequest{
		Content:         req.Content,
		Topic:           req.Topic,
		QuestionCount:   req.QuestionCount,
		QuestionType:    req.QuestionType,
		DifficultyLevel: req.DifficultyLevel,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("Question generation failed")
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
