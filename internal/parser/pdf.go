// -----------------------------------------------------------------------
// PDF Parser - structured extraction backed by pdfcpu for document-level
// facts plus a per-page plain-text walk, with a linear whole-document
// fallback for files the structured path cannot read
// -----------------------------------------------------------------------

package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// Trimmed text shorter than this marks an extraction as degraded; scanned
// or image-only PDFs typically land here.
const minPDFTextLength = 100

// PDFParser extracts text, metadata and structure from PDF documents.
type PDFParser struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.DocumentParser = (*PDFParser)(nil)

// NewPDFParser creates a new PDF parser.
func NewPDFParser(logger arbor.ILogger) *PDFParser {
	// Temp directory for pdfcpu processing, which works from file paths
	tempDir := filepath.Join(os.TempDir(), "lectio-pdf")
	os.MkdirAll(tempDir, 0755)

	return &PDFParser{
		logger:  logger,
		tempDir: tempDir,
	}
}

// SupportedMimetypes returns the MIME types this parser handles.
func (p *PDFParser) SupportedMimetypes() []string {
	return []string{"application/pdf"}
}

// Parse extracts text from PDF content. The structured path runs first;
// when it fails or yields too little text, a linear whole-document pass is
// tried and the longer result kept. Failures never escape: they are folded
// into the result's error field.
func (p *PDFParser) Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult {
	text, metadata, structure, err := p.extractStructured(content)
	if err == nil {
		trimmed := strings.TrimSpace(text)
		if len(trimmed) < minPDFTextLength {
			if fallbackText, fbErr := p.extractLinear(content); fbErr == nil {
				text = longerExtraction(text, fallbackText)
				trimmed = strings.TrimSpace(text)
			}
		}

		pages, _ := structure["page_count"].(int)
		result := models.NewParsingResult(text, metadata, pages, structure)
		if len(trimmed) < minPDFTextLength {
			result.Error = "Extracted text is minimal or empty; document may be scanned or image-based."
		}
		return result
	}

	p.logger.Warn().Err(err).Str("filename", filename).Msg("Structured PDF extraction failed, trying linear fallback")

	fallbackText, fbErr := p.extractLinear(content)
	if fbErr != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("PDF parsing failed: %v", fbErr))
	}
	if strings.TrimSpace(fallbackText) == "" {
		return models.NewErrorParsingResult(fmt.Sprintf("PDF parsing failed, no text could be extracted: %v", err))
	}

	result := models.NewParsingResult(
		fallbackText,
		map[string]interface{}{"extraction_method": "linear_fallback"},
		1, // page count is unknown without the structured context
		nil,
	)
	result.Error = fmt.Sprintf("Using fallback extraction due to error: %v", err)
	return result
}

// longerExtraction keeps whichever extraction carries more trimmed text,
// preferring the primary on a tie.
func longerExtraction(primary, fallback string) string {
	if len(strings.TrimSpace(fallback)) > len(strings.TrimSpace(primary)) {
		return fallback
	}
	return primary
}

// extractStructured runs the primary extraction: pdfcpu supplies the page
// count and encryption flag, the information dictionary fills metadata, and
// a per-page walk collects the body text. Reader panics on malformed input
// are converted into errors.
func (p *PDFParser) extractStructured(content []byte) (text string, metadata map[string]interface{}, structure map[string]interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	pageCount, encrypted, err := p.readContextInfo(content)
	if err != nil {
		return "", nil, nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", nil, nil, err
	}

	metadata = map[string]interface{}{
		"page_count":   pageCount,
		"file_size":    len(content),
		"is_encrypted": encrypted,
	}
	mergeDocumentInfo(reader, metadata)

	structure = map[string]interface{}{
		"page_count":  pageCount,
		"toc":         extractOutline(reader),
		"form_fields": extractFormFields(reader),
	}

	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		pageText, ok := extractPageText(reader, pageNum)
		if !ok {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}

	return builder.String(), metadata, structure, nil
}

// readContextInfo stages the document to a temp file and reads its pdfcpu
// context for the page count and encryption flag.
func (p *PDFParser) readContextInfo(content []byte) (pageCount int, encrypted bool, err error) {
	tempFile, err := os.CreateTemp(p.tempDir, "parse_*.pdf")
	if err != nil {
		return 0, false, fmt.Errorf("failed to stage PDF for inspection: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.Write(content); err != nil {
		tempFile.Close()
		return 0, false, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return 0, false, err
	}

	pdfCtx, err := api.ReadContextFile(tempPath)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read PDF context: %w", err)
	}

	return pdfCtx.PageCount, pdfCtx.Encrypt != nil, nil
}

// extractLinear extracts the whole document as one text stream. It carries
// no structure but succeeds on some files the structured walk cannot read.
func (p *PDFParser) extractLinear(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf fallback panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	raw, err := io.ReadAll(textReader)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// extractPageText pulls plain text from a single page. Pages that fail to
// decode are skipped rather than failing the whole document.
func extractPageText(reader *pdf.Reader, pageNum int) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", false
	}

	pageText, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	return pageText, true
}

// mergeDocumentInfo copies the document information dictionary into the
// metadata map. Every key is present even when the dictionary is absent.
func mergeDocumentInfo(reader *pdf.Reader, metadata map[string]interface{}) {
	fields := []struct {
		infoKey string
		metaKey string
	}{
		{"Title", "title"},
		{"Author", "author"},
		{"Subject", "subject"},
		{"Keywords", "keywords"},
		{"Creator", "creator"},
		{"Producer", "producer"},
		{"CreationDate", "creation_date"},
		{"ModDate", "modification_date"},
	}
	for _, f := range fields {
		metadata[f.metaKey] = ""
	}

	defer func() {
		_ = recover()
	}()

	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return
	}
	for _, f := range fields {
		if v := info.Key(f.infoKey); v.Kind() == pdf.String {
			metadata[f.metaKey] = v.Text()
		}
	}
}

// extractOutline flattens the document outline into toc entries. Outline
// walking panics on some malformed files, so failures yield an empty list.
func extractOutline(reader *pdf.Reader) (toc []map[string]interface{}) {
	toc = make([]map[string]interface{}, 0)
	defer func() {
		if recover() != nil {
			toc = make([]map[string]interface{}, 0)
		}
	}()

	var walk func(node pdf.Outline, level int)
	walk = func(node pdf.Outline, level int) {
		if title := strings.TrimSpace(node.Title); title != "" {
			toc = append(toc, map[string]interface{}{
				"level": level,
				"title": title,
			})
		}
		for _, child := range node.Child {
			walk(child, level+1)
		}
	}

	root := reader.Outline()
	for _, child := range root.Child {
		walk(child, 1)
	}
	return toc
}

// extractFormFields walks the AcroForm field array when present. Field
// dictionaries vary wildly across producers; anything unreadable is skipped.
func extractFormFields(reader *pdf.Reader) (fields []map[string]interface{}) {
	fields = make([]map[string]interface{}, 0)
	defer func() {
		if recover() != nil {
			fields = make([]map[string]interface{}, 0)
		}
	}()

	acroForm := reader.Trailer().Key("Root").Key("AcroForm")
	if acroForm.Kind() != pdf.Dict {
		return fields
	}
	list := acroForm.Key("Fields")
	if list.Kind() != pdf.Array {
		return fields
	}

	for i := 0; i < list.Len(); i++ {
		field := list.Index(i)
		if field.Kind() != pdf.Dict {
			continue
		}
		fields = append(fields, map[string]interface{}{
			"field_name":  valueText(field.Key("T")),
			"field_type":  valueText(field.Key("FT")),
			"field_value": valueText(field.Key("V")),
		})
	}
	return fields
}

// valueText renders a PDF value as a plain string for metadata purposes.
func valueText(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	case pdf.Integer, pdf.Real, pdf.Bool:
		return v.String()
	default:
		return ""
	}
}
