package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenericParserPlainText(t *testing.T) {
	parser := NewGenericParser(testLogger())
	content := []byte("# Lesson Plan\n\nToday we cover fractions.\n")

	result := parser.Parse(context.Background(), content, "notes.txt")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, string(content), result.Text)
	assert.Equal(t, "text", result.Metadata["source_format"])
	assert.Equal(t, 1, result.Pages)

	headings, ok := result.Structure["headings"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, headings, 1)
	assert.Equal(t, 1, headings[0]["level"])
	assert.Equal(t, "Lesson Plan", headings[0]["text"])
}

func TestGenericParserMarkdownHeadingLevels(t *testing.T) {
	parser := NewGenericParser(testLogger())
	content := []byte("# One\n## Two\n###### Six\n####### Seven is too deep\nbody\n")

	result := parser.Parse(context.Background(), content, "doc.md")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "markdown", result.Metadata["source_format"])

	headings := result.Structure["headings"].([]map[string]interface{})
	require.Len(t, headings, 3)
	assert.Equal(t, 1, headings[0]["level"])
	assert.Equal(t, 2, headings[1]["level"])
	assert.Equal(t, 6, headings[2]["level"])
	assert.Equal(t, "Six", headings[2]["text"])
}

func TestGenericParserHTML(t *testing.T) {
	parser := NewGenericParser(testLogger())
	content := []byte(`<html><head><title>Fractions Intro</title></head>` +
		`<body><h1>Fractions</h1><p>A fraction has a numerator.</p></body></html>`)

	result := parser.Parse(context.Background(), content, "page.html")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "html", result.Metadata["source_format"])
	assert.Equal(t, "Fractions Intro", result.Metadata["title"])
	assert.Contains(t, result.Text, "Fractions")
	assert.Contains(t, result.Text, "A fraction has a numerator.")

	headings := result.Structure["headings"].([]map[string]interface{})
	require.NotEmpty(t, headings)
	assert.Equal(t, 1, headings[0]["level"])
}

func TestGenericParserCSV(t *testing.T) {
	parser := NewGenericParser(testLogger())
	content := []byte("name,score\nAda,90\nGrace,95\n")

	result := parser.Parse(context.Background(), content, "grades.csv")

	require.True(t, result.Success(), result.Error)
	assert.Contains(t, result.Text, "| name | score |")
	assert.Contains(t, result.Text, "| Ada | 90 |")
	assert.Equal(t, "csv", result.Metadata["source_format"])
	assert.Equal(t, true, result.Metadata["has_tables"])
	assert.Equal(t, 1, result.Metadata["table_count"])

	require.Len(t, result.Tables, 1)
	assert.Equal(t, []string{"name", "score"}, result.Tables[0]["headers"])
	assert.Equal(t, 2, result.Tables[0]["row_count"])
}

func TestGenericParserJSON(t *testing.T) {
	parser := NewGenericParser(testLogger())

	result := parser.Parse(context.Background(), []byte(`{"unit":"fractions","week":3}`), "plan.json")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "json", result.Metadata["source_format"])
	assert.Equal(t, true, result.Metadata["valid_json"])
	assert.Contains(t, result.Text, `"unit"`)
}

func TestGenericParserInvalidJSON(t *testing.T) {
	parser := NewGenericParser(testLogger())

	result := parser.Parse(context.Background(), []byte(`{"broken":`), "plan.json")

	assert.False(t, result.Success())
	assert.Contains(t, result.Error, "Document conversion failed")
	assert.Contains(t, result.Error, "invalid JSON content")
}

func TestGenericParserSpreadsheet(t *testing.T) {
	workbook := excelize.NewFile()
	require.NoError(t, workbook.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "B1", "score"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "A2", "Ada"))
	require.NoError(t, workbook.SetCellValue("Sheet1", "B2", 90))
	buf, err := workbook.WriteToBuffer()
	require.NoError(t, err)

	parser := NewGenericParser(testLogger())
	result := parser.Parse(context.Background(), buf.Bytes(), "grades.xlsx")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "spreadsheet", result.Metadata["source_format"])
	assert.Equal(t, 1, result.Metadata["sheet_count"])
	assert.Equal(t, 1, result.Pages)
	assert.Contains(t, result.Text, "| name | score |")

	require.Len(t, result.Tables, 1)
	assert.Equal(t, "Sheet1", result.Tables[0]["sheet_name"])

	// Sheet names become level-1 headings in the converted text.
	headings := result.Structure["headings"].([]map[string]interface{})
	require.Len(t, headings, 1)
	assert.Equal(t, "Sheet1", headings[0]["text"])
}

func TestGenericParserEmail(t *testing.T) {
	raw := strings.Join([]string{
		"From: Alice Teacher <alice@example.com>",
		"To: Bob Student <bob@example.com>",
		"Subject: Homework reminder",
		"Date: Mon, 02 Jan 2006 15:04:05 -0700",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Please finish worksheet 3 before Friday.",
		"",
	}, "\r\n")

	parser := NewGenericParser(testLogger())
	result := parser.Parse(context.Background(), []byte(raw), "reminder.eml")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "email", result.Metadata["source_format"])
	assert.Equal(t, "Homework reminder", result.Metadata["subject"])
	assert.Contains(t, result.Text, "worksheet 3")
}

func TestGenericParserUnsupportedExtension(t *testing.T) {
	parser := NewGenericParser(testLogger())

	result := parser.Parse(context.Background(), []byte{0x00, 0x01, 0x02}, "blob.xyz")

	assert.False(t, result.Success())
	assert.Contains(t, result.Error, "unsupported format")
}

func TestGenericParserSniffsMissingExtension(t *testing.T) {
	parser := NewGenericParser(testLogger())

	result := parser.Parse(context.Background(), []byte("plain text without any filename hint"), "")

	require.True(t, result.Success(), result.Error)
	assert.Equal(t, "text", result.Metadata["source_format"])
	assert.Contains(t, result.Text, "plain text")
}

func TestExtractMarkdownHeadings(t *testing.T) {
	headings := extractMarkdownHeadings("# One\nplain\n##   Padded Two\n#NoSpace\n")

	require.Len(t, headings, 3)
	assert.Equal(t, "One", headings[0]["text"])
	assert.Equal(t, "Padded Two", headings[1]["text"])
	assert.Equal(t, 2, headings[1]["level"])
	assert.Equal(t, "NoSpace", headings[2]["text"])
}
