package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/services/prompts"
)

// fakeAI records the prompt and returns a canned response.
type fakeAI struct {
	response string
	err      error
	prompt   string
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeAI) Name() string                         { return "fake" }
func (f *fakeAI) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeAI) Close() error                          { return nil }

func newTestService(ai interfaces.AIService) *Service {
	return NewService(prompts.NewLibrary(), ai, arbor.NewLogger())
}

func TestGenerateDecodesJSON(t *testing.T) {
	ai := &fakeAI{response: `{"questions": [{"text": "What is 2+2?", "answer": "4"}]}`}
	service := newTestService(ai)

	result, err := service.Generate(context.Background(), interfaces.QuestionRequest{
		Content:         "Addition of small numbers.",
		Topic:           "arithmetic",
		QuestionCount:   3,
		QuestionType:    "short-answer",
		DifficultyLevel: "elementary",
	})
	require.NoError(t, err)

	questions, ok := result["questions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, questions, 1)

	t.Run("prompt carries request parameters", func(t *testing.T) {
		assert.Contains(t, ai.prompt, "3 short-answer questions")
		assert.Contains(t, ai.prompt, "arithmetic")
		assert.Contains(t, ai.prompt, "elementary level")
		assert.Contains(t, ai.prompt, "Addition of small numbers.")
	})
}

func TestGenerateWrapsNonJSON(t *testing.T) {
	service := newTestService(&fakeAI{response: "1. What is a fraction?"})

	result, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "fractions"})
	require.NoError(t, err)
	assert.Equal(t, "1. What is a fraction?", result["raw_response"])
}

func TestGenerateStripsCodeFence(t *testing.T) {
	service := newTestService(&fakeAI{response: "```json\n{\"questions\": []}\n```"})

	result, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "fractions"})
	require.NoError(t, err)
	_, hasQuestions := result["questions"]
	assert.True(t, hasQuestions)
	_, hasRaw := result["raw_response"]
	assert.False(t, hasRaw)
}

func TestGenerateDefaults(t *testing.T) {
	ai := &fakeAI{response: `{}`}
	service := newTestService(ai)

	_, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "photosynthesis notes"})
	require.NoError(t, err)
	assert.Contains(t, ai.prompt, "5 multiple-choice questions")
	assert.Contains(t, ai.prompt, "intermediate level")
	assert.Contains(t, ai.prompt, "the provided material")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("empty content rejected", func(t *testing.T) {
		service := newTestService(&fakeAI{response: `{}`})
		_, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "   "})
		assert.Error(t, err)
	})

	t.Run("provider failure surfaces", func(t *testing.T) {
		service := newTestService(&fakeAI{err: errors.New("quota exceeded")})
		_, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "x"})
		assert.Error(t, err)
	})

	t.Run("nil provider rejected", func(t *testing.T) {
		service := newTestService(nil)
		_, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no AI provider configured")
	})
}

func TestGenerateTruncatesLongContent(t *testing.T) {
	long := make([]rune, contentInputLimit+500)
	for i := range long {
		long[i] = 'a'
	}

	ai := &fakeAI{response: `{}`}
	service := newTestService(ai)

	_, err := service.Generate(context.Background(), interfaces.QuestionRequest{Content: string(long)})
	require.NoError(t, err)
	assert.Less(t, len(ai.prompt), contentInputLimit+1000)
}
