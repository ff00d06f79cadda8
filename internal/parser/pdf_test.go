package parser

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singlePagePDF renders a one-page PDF carrying the given text. Compression
// is off so the text extraction path sees a plain content stream.
func singlePagePDF(t *testing.T, text string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(40, 10, text)

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestPDFParserSupportedMimetypes(t *testing.T) {
	parser := NewPDFParser(testLogger())
	assert.Equal(t, []string{"application/pdf"}, parser.SupportedMimetypes())
}

func TestPDFParserMalformedContent(t *testing.T) {
	parser := NewPDFParser(testLogger())

	result := parser.Parse(context.Background(), []byte("this is not a pdf document"), "bogus.pdf")

	require.NotNil(t, result)
	assert.False(t, result.Success())
	assert.Empty(t, result.Text)
	assert.True(t, strings.HasPrefix(result.Error, "PDF parsing failed"), result.Error)
}

func TestPDFParserEmptyContent(t *testing.T) {
	parser := NewPDFParser(testLogger())

	result := parser.Parse(context.Background(), nil, "empty.pdf")

	require.NotNil(t, result)
	assert.False(t, result.Success())
	assert.GreaterOrEqual(t, result.Pages, 1)
}

func TestPDFParserTruncatedHeader(t *testing.T) {
	parser := NewPDFParser(testLogger())

	// Starts like a PDF but the body is garbage; both extraction paths
	// must fail without panicking.
	content := append([]byte("%PDF-1.7\n"), []byte("garbage stream content")...)
	result := parser.Parse(context.Background(), content, "truncated.pdf")

	require.NotNil(t, result)
	assert.False(t, result.Success())
	assert.NotEmpty(t, result.Error)
}

func TestPDFParserShortTextMarksDegraded(t *testing.T) {
	parser := NewPDFParser(testLogger())

	// A valid page with almost no text reads like a scanned document.
	result := parser.Parse(context.Background(), singlePagePDF(t, "Scanned page"), "scan.pdf")

	require.NotNil(t, result)
	assert.False(t, result.Success())
	assert.GreaterOrEqual(t, result.Pages, 1)
	assert.Contains(t, result.Error, "scanned or image-based")
}

func TestLongerExtractionWins(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		fallback string
		want     string
	}{
		{"fallback longer", "short", "a much longer fallback body", "a much longer fallback body"},
		{"primary longer", "a longer primary body", "short", "a longer primary body"},
		{"tie keeps primary", "same5", "also5", "same5"},
		{"whitespace fallback loses", "short", "   \n\t  ", "short"},
		{"empty primary yields fallback", "", "recovered text", "recovered text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, longerExtraction(tt.primary, tt.fallback))
		})
	}
}

func TestPDFParserResultShape(t *testing.T) {
	parser := NewPDFParser(testLogger())

	result := parser.Parse(context.Background(), []byte("junk"), "junk.pdf")
	payload := result.ToMap()

	assert.Equal(t, false, payload["success"])
	assert.NotNil(t, payload["error"])
	assert.Contains(t, payload, "metadata")
	assert.Contains(t, payload, "structure")
}
