package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/models"
)

func sampleDocument() *models.Document {
	return &models.Document{
		ID:            "doc_report",
		Filename:      "fractions-worksheet.pdf",
		DocumentType:  "worksheet",
		Status:        models.DocumentStatusAnalyzed,
		PageCount:     2,
		WordCount:     340,
		AnalysisDepth: "standard",
		CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Analysis: &models.AnalysisResult{
			DocumentType: "worksheet",
			Structure: map[string]interface{}{
				"total_length": 340,
				"line_count":   42,
			},
			EducationalElements: map[string]interface{}{
				"questions": []interface{}{
					map[string]interface{}{"number": "1", "text": "What is 1/2 + 1/4?"},
				},
			},
			AIInsights: map[string]interface{}{
				"analysis": map[string]interface{}{
					"main_topics": []interface{}{"fractions", "addition"},
				},
			},
		},
	}
}

func TestBuildMarkdown(t *testing.T) {
	md := BuildMarkdown(sampleDocument())

	assert.Contains(t, md, "# Analysis Report: fractions-worksheet.pdf")
	assert.Contains(t, md, "| ID | doc_report |")
	assert.Contains(t, md, "| Words | 340 |")
	assert.Contains(t, md, "## Analysis (standard depth)")
	assert.Contains(t, md, "### Structure")
	assert.Contains(t, md, "- **line count**: 42")
	assert.Contains(t, md, "### AI Insights")
	assert.Contains(t, md, "- fractions")
}

func TestBuildMarkdownWithoutAnalysis(t *testing.T) {
	doc := sampleDocument()
	doc.Analysis = nil
	doc.AnalysisDepth = ""

	md := BuildMarkdown(doc)
	assert.Contains(t, md, "No analysis has been run")
}

func TestBuildMarkdownIncludesErrors(t *testing.T) {
	doc := sampleDocument()
	doc.ParseError = "Page 3 could not be decoded"
	doc.Analysis.Errors = []string{"Relationship analysis failed"}

	md := BuildMarkdown(doc)
	assert.Contains(t, md, "## Parse Warnings")
	assert.Contains(t, md, "Page 3 could not be decoded")
	assert.Contains(t, md, "### Issues")
	assert.Contains(t, md, "- Relationship analysis failed")
}

func TestGeneratePDF(t *testing.T) {
	service := NewService(arbor.NewLogger())

	data, err := service.Generate(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderMarkdownElements(t *testing.T) {
	service := NewService(arbor.NewLogger())

	markdown := "# Title\n\nSome **bold** and *italic* and `code`.\n\n" +
		"- item one\n- item two\n\n" +
		"| A | B |\n|---|---|\n| 1 | 2 |\n\n" +
		"```\ncode block line one\ncode block line two\n```\n\n---\n"

	data, err := service.RenderMarkdown(markdown, "elements")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
