package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/models"
)

// fakeAI is a canned AI capability for enhancement tests.
type fakeAI struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeAI) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAI) Name() string                        { return "fake" }
func (f *fakeAI) HealthCheck(_ context.Context) error { return nil }
func (f *fakeAI) Close() error                        { return nil }

func newTestClassifier(t *testing.T, ai *fakeAI) *Service {
	t.Helper()
	var svc *Service
	var err error
	if ai != nil {
		svc, err = NewService("", ai, arbor.NewLogger())
	} else {
		svc, err = NewService("", nil, arbor.NewLogger())
	}
	require.NoError(t, err)
	return svc
}

func parsed(text string) *models.ParsingResult {
	return models.NewParsingResult(text, nil, 1, nil)
}

func TestIdentifyDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.EducationalDocumentType
	}{
		{"syllabus keyword", "Course Syllabus for Math 101", models.DocTypeSyllabus},
		{"chinese syllabus keyword", "本文件為課程大綱", models.DocTypeSyllabus},
		{"exam keyword", "Midterm Exam - Spring 2026", models.DocTypeExam},
		{"chinese exam keyword", "期末測驗卷", models.DocTypeExam},
		{"worksheet keyword", "Fractions worksheet for grade 5", models.DocTypeWorksheet},
		{"chinese worksheet keyword", "數學練習第三章", models.DocTypeWorksheet},
		{"lesson plan keyword", "Weekly lesson plan: photosynthesis", models.DocTypeLessonPlan},
		{"chinese lesson plan keyword", "自然科教案", models.DocTypeLessonPlan},
		{"lecture keyword", "Lecture 7: Linear Algebra", models.DocTypeLectureNotes},
		{"chinese lecture keyword", "微積分講義", models.DocTypeLectureNotes},
		{"no match", "Just an ordinary memo about the school picnic.", models.DocTypeUnknown},
		{"empty text", "", models.DocTypeUnknown},
		// Rule order: syllabus is checked before exam, so a syllabus that
		// mentions its exams still classifies as a syllabus.
		{"syllabus wins over exam", "Syllabus\nWeek 10: final exam review", models.DocTypeSyllabus},
		{"exam wins over worksheet", "Practice exam with exercise problems", models.DocTypeExam},
	}

	svc := newTestClassifier(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Analyze(context.Background(), parsed(tt.text))
			assert.Equal(t, tt.expected, result.DocumentType)
		})
	}
}

func TestClassifyMatchesAnalyze(t *testing.T) {
	svc := newTestClassifier(t, nil)
	for _, text := range []string{
		"Course Syllabus for Math 101",
		"Midterm Exam - Spring 2026",
		"Just an ordinary memo about the school picnic.",
	} {
		input := parsed(text)
		assert.Equal(t, svc.Analyze(context.Background(), input).DocumentType, svc.Classify(input))
	}
}

func TestQuestionCountHeuristic(t *testing.T) {
	questions := "1. First item here\n2. Second item here\n3. Third item here"

	t.Run("three questions without scoring keywords", func(t *testing.T) {
		svc := newTestClassifier(t, nil)
		result := svc.Analyze(context.Background(), parsed(questions))
		assert.Equal(t, models.DocTypeWorksheet, result.DocumentType)
	})

	t.Run("three questions with scoring keyword", func(t *testing.T) {
		svc := newTestClassifier(t, nil)
		result := svc.Analyze(context.Background(), parsed(questions+"\n成績: 100分"))
		assert.Equal(t, models.DocTypeExam, result.DocumentType)
	})

	t.Run("two questions stay unknown", func(t *testing.T) {
		svc := newTestClassifier(t, nil)
		result := svc.Analyze(context.Background(), parsed("1. First\n2. Second"))
		assert.Equal(t, models.DocTypeUnknown, result.DocumentType)
	})

	t.Run("chinese and roman numbering counts", func(t *testing.T) {
		svc := newTestClassifier(t, nil)
		result := svc.Analyze(context.Background(), parsed("一、 first\n二、 second\nIII. third"))
		assert.Equal(t, models.DocTypeWorksheet, result.DocumentType)
	})
}

func TestExtractQuestionsInlineOptions(t *testing.T) {
	// Repeated multiple-choice line with a scoring keyword: classifies as an
	// exam carrying one record per line, three options each.
	line := "1. What is 2+2? A. 3 B. 4 C. 5"
	text := strings.Join([]string{line, strings.Replace(line, "1.", "2.", 1), strings.Replace(line, "1.", "3.", 1)}, "\n") + "\n成績"

	svc := newTestClassifier(t, nil)
	result := svc.Analyze(context.Background(), parsed(text))

	assert.Equal(t, models.DocTypeExam, result.DocumentType)
	questions, ok := result.EducationalElements["questions"].([]*models.Question)
	require.True(t, ok)
	require.Len(t, questions, 3)

	for i, q := range questions {
		assert.Equal(t, "What is 2+2?", q.Text, "question %d", i)
		require.Len(t, q.Options, 3, "question %d", i)
		assert.Equal(t, "A", q.Options[0].Label)
		assert.Equal(t, "3", q.Options[0].Text)
		assert.Equal(t, "B", q.Options[1].Label)
		assert.Equal(t, "4", q.Options[1].Text)
		assert.Equal(t, "C", q.Options[2].Label)
		assert.Equal(t, "5", q.Options[2].Text)
	}
	assert.Equal(t, "1", questions[0].Number)
	assert.Equal(t, "3", questions[2].Number)
}

func TestExtractQuestionsLineOptions(t *testing.T) {
	text := strings.Join([]string{
		"1. Which planet is closest to the sun?",
		"A. Venus",
		"B. Mercury",
		"C. Mars",
		"D. Earth",
		"2. Name the largest ocean.",
		"It covers about a third of the surface.",
	}, "\n")

	questions := ExtractQuestions(text)
	require.Len(t, questions, 2)

	assert.Equal(t, "Which planet is closest to the sun?", questions[0].Text)
	require.Len(t, questions[0].Options, 4)
	assert.Equal(t, "D", questions[0].Options[3].Label)
	assert.Equal(t, "Earth", questions[0].Options[3].Text)

	assert.Equal(t, "Name the largest ocean.\nIt covers about a third of the surface.", questions[1].Text)
	assert.Empty(t, questions[1].Options)
}

func TestExtractQuestionsIdempotent(t *testing.T) {
	text := "1. First question? A. yes B. no\n2. Second question\nwith a continuation line\n第3題 third one"

	first := ExtractQuestions(text)
	second := ExtractQuestions(text)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "3", first[2].Number)
}

func TestExtractLearningObjectives(t *testing.T) {
	t.Run("chinese section with numbered items", func(t *testing.T) {
		text := "學習目標\n1. Understand fractions\n2. Apply fractions\n\nNext section"
		objectives := ExtractLearningObjectives(text)
		assert.Equal(t, []string{"Understand fractions", "Apply fractions"}, objectives)
	})

	t.Run("english keyword to end of text", func(t *testing.T) {
		text := "Learning objectives:\n- Describe the water cycle\n- Explain evaporation"
		objectives := ExtractLearningObjectives(text)
		assert.Equal(t, []string{"Describe the water cycle", "Explain evaporation"}, objectives)
	})

	t.Run("no keyword present", func(t *testing.T) {
		assert.Empty(t, ExtractLearningObjectives("Nothing relevant in here."))
	})
}

func TestSyllabusAnalysisExtractsObjectives(t *testing.T) {
	svc := newTestClassifier(t, nil)
	text := "課程大綱\n\n學習目標\n1. Understand fractions\n2. Apply fractions\n\nNext section"

	result := svc.Analyze(context.Background(), parsed(text))

	assert.Equal(t, models.DocTypeSyllabus, result.DocumentType)
	objectives, ok := result.EducationalElements["objectives"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Understand fractions", "Apply fractions"}, objectives)
}

func TestAIEnhancement(t *testing.T) {
	t.Run("json response decoded", func(t *testing.T) {
		ai := &fakeAI{response: `{"document_type": "exam", "educational_level": "high school"}`}
		svc := newTestClassifier(t, ai)

		result := svc.Analyze(context.Background(), parsed("midterm exam"))

		require.NotNil(t, result.AIEnhancedAnalysis)
		assert.Equal(t, "exam", result.AIEnhancedAnalysis["document_type"])
		assert.Empty(t, result.AIAnalysisError)
	})

	t.Run("non-json response wrapped", func(t *testing.T) {
		ai := &fakeAI{response: "This looks like an exam paper."}
		svc := newTestClassifier(t, ai)

		result := svc.Analyze(context.Background(), parsed("midterm exam"))

		require.NotNil(t, result.AIEnhancedAnalysis)
		assert.Equal(t, "This looks like an exam paper.", result.AIEnhancedAnalysis["raw_response"])
	})

	t.Run("fenced json response decoded", func(t *testing.T) {
		ai := &fakeAI{response: "```json\n{\"topic\": \"fractions\"}\n```"}
		svc := newTestClassifier(t, ai)

		result := svc.Analyze(context.Background(), parsed("fractions worksheet"))

		require.NotNil(t, result.AIEnhancedAnalysis)
		assert.Equal(t, "fractions", result.AIEnhancedAnalysis["topic"])
	})

	t.Run("provider failure recorded without losing heuristics", func(t *testing.T) {
		ai := &fakeAI{err: errors.New("rate limited")}
		svc := newTestClassifier(t, ai)

		result := svc.Analyze(context.Background(), parsed("1. q\n2. q\n3. q"))

		assert.Equal(t, models.DocTypeWorksheet, result.DocumentType)
		assert.Contains(t, result.AIAnalysisError, "rate limited")
		assert.Nil(t, result.AIEnhancedAnalysis)
	})

	t.Run("no provider runs heuristics only", func(t *testing.T) {
		svc := newTestClassifier(t, nil)

		result := svc.Analyze(context.Background(), parsed("course syllabus"))

		assert.Equal(t, models.DocTypeSyllabus, result.DocumentType)
		assert.Nil(t, result.AIEnhancedAnalysis)
		assert.Empty(t, result.AIAnalysisError)
		_, hasEnhanced := result.ToMap()["ai_enhanced_analysis"]
		assert.False(t, hasEnhanced)
	})

	t.Run("prompt variant follows document type", func(t *testing.T) {
		ai := &fakeAI{response: "{}"}
		svc := newTestClassifier(t, ai)

		svc.Analyze(context.Background(), parsed("final exam paper"))

		require.Len(t, ai.prompts, 1)
		assert.Contains(t, ai.prompts[0], "exam paper")
		assert.Contains(t, ai.prompts[0], "exam_subject")
	})

	t.Run("prompt input truncated", func(t *testing.T) {
		ai := &fakeAI{response: "{}"}
		svc := newTestClassifier(t, ai)

		long := "worksheet " + strings.Repeat("x", 10000)
		svc.Analyze(context.Background(), parsed(long))

		require.Len(t, ai.prompts, 1)
		assert.Less(t, len(ai.prompts[0]), 5000)
	})
}

func TestLoadRulePack(t *testing.T) {
	t.Run("pack rules take priority", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rules.yaml")
		pack := `rules:
  - name: custom-textbook
    document_type: textbook
    keywords: ["chapter review", "單元複習"]
`
		require.NoError(t, os.WriteFile(path, []byte(pack), 0o644))

		svc, err := NewService(path, nil, arbor.NewLogger())
		require.NoError(t, err)

		// The pack keyword wins even though "exercise" would match the
		// built-in worksheet rule.
		result := svc.Analyze(context.Background(), parsed("Chapter review exercise"))
		assert.Equal(t, models.DocTypeTextbook, result.DocumentType)
	})

	t.Run("invalid document type rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: bad\n    document_type: novel\n    keywords: [x]\n"), 0o644))

		_, err := NewService(path, nil, arbor.NewLogger())
		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewService("/nonexistent/rules.yaml", nil, arbor.NewLogger())
		assert.Error(t, err)
	})
}
