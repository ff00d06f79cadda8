// -----------------------------------------------------------------------
// Generic Parser - converts assorted text and office formats to markdown
// through file-staged converters, then mines headings from the output
// -----------------------------------------------------------------------

package parser

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message/mail"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// Markdown defines heading levels 1 through 6.
const maxHeadingLevel = 6

// GenericParser handles text-adjacent formats through per-format converters.
// Converters work from file paths, so content is staged to a scoped temp
// file that is deleted on every exit path.
type GenericParser struct {
	logger      arbor.ILogger
	stripPolicy *bluemonday.Policy
	tempDir     string
}

// Compile-time interface assertion
var _ interfaces.DocumentParser = (*GenericParser)(nil)

// NewGenericParser creates a parser for text, markdown, HTML, CSV, JSON,
// spreadsheet and email content.
func NewGenericParser(logger arbor.ILogger) *GenericParser {
	tempDir := filepath.Join(os.TempDir(), "lectio-convert")
	os.MkdirAll(tempDir, 0755)

	return &GenericParser{
		logger:      logger,
		stripPolicy: bluemonday.StrictPolicy(),
		tempDir:     tempDir,
	}
}

// WithStagingDir redirects staged conversion files to the given directory,
// letting the file store's staging sweep cover them.
func (p *GenericParser) WithStagingDir(dir string) *GenericParser {
	if dir != "" {
		os.MkdirAll(dir, 0755)
		p.tempDir = dir
	}
	return p
}

// SupportedMimetypes returns the MIME types this parser handles.
func (p *GenericParser) SupportedMimetypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/html",
		"text/csv",
		"application/json",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"message/rfc822",
	}
}

// Parse stages the content to disk, routes it to a format converter and
// mines markdown headings from the converted text. Failures never escape:
// they are folded into the result's error field.
func (p *GenericParser) Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult {
	tempPath, cleanup, err := p.stageContent(content, filename)
	if err != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("Document conversion failed: %v", err))
	}
	defer cleanup()

	converted, err := p.convertFile(tempPath)
	if err != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("Document conversion failed: %v", err))
	}

	if converted.metadata == nil {
		converted.metadata = map[string]interface{}{}
	}
	converted.metadata["source_format"] = converted.format
	converted.metadata["has_tables"] = len(converted.tables) > 0
	converted.metadata["table_count"] = len(converted.tables)

	structure := map[string]interface{}{
		"headings": extractMarkdownHeadings(converted.text),
	}
	if len(converted.images) > 0 {
		structure["has_images"] = true
		structure["image_count"] = len(converted.images)
	}

	result := models.NewParsingResult(converted.text, converted.metadata, converted.pages, structure)
	result.Tables = converted.tables
	result.Images = converted.images
	return result
}

// convertResult carries a converter's output back to the parser.
type convertResult struct {
	text     string
	metadata map[string]interface{}
	pages    int
	tables   []map[string]interface{}
	images   []map[string]interface{}
	format   string
}

// stageContent writes the upload to a scoped temp file carrying the right
// extension, since converters dispatch on it. When the filename gives no
// extension the content is sniffed instead. The returned cleanup func is
// safe to call on every exit path.
func (p *GenericParser) stageContent(content []byte, filename string) (string, func(), error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" {
		extension = mimetype.Detect(content).Extension()
	}

	tempPath := filepath.Join(p.tempDir, common.NewStagedFileID(extension))
	cleanup := func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("path", tempPath).Msg("Failed to delete staged file")
		}
	}

	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to stage content: %w", err)
	}

	return tempPath, cleanup, nil
}

// convertFile routes the staged file to a format converter by extension.
func (p *GenericParser) convertFile(path string) (*convertResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return convertPlainText(path, "text")
	case ".md", ".markdown":
		return convertPlainText(path, "markdown")
	case ".html", ".htm":
		return p.convertHTML(path)
	case ".csv":
		return convertCSV(path)
	case ".json":
		return convertJSON(path)
	case ".xlsx", ".xlsm":
		return convertSpreadsheet(path)
	case ".eml":
		return p.convertEmail(path)
	default:
		return nil, fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
}

func convertPlainText(path string, format string) (*convertResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)

	return &convertResult{
		text:     text,
		metadata: map[string]interface{}{"line_count": strings.Count(text, "\n") + 1},
		pages:    1,
		format:   format,
	}, nil
}

// convertHTML converts the page to markdown, keeping the title as metadata.
func (p *GenericParser) convertHTML(path string) (*convertResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	htmlContent := string(data)

	metadata := map[string]interface{}{}
	if doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(htmlContent)); docErr == nil {
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			metadata["title"] = title
		}
	}

	return &convertResult{
		text:     p.htmlToMarkdown(htmlContent),
		metadata: metadata,
		pages:    1,
		format:   "html",
	}, nil
}

// htmlToMarkdown converts HTML to markdown, falling back to tag stripping
// when conversion fails or produces nothing, so a malformed page still
// yields its visible text.
func (p *GenericParser) htmlToMarkdown(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	converter := md.NewConverter("", true, nil)
	converted, err := converter.ConvertString(htmlContent)
	if err != nil {
		p.logger.Warn().Err(err).Msg("HTML to markdown conversion failed, stripping tags")
		return p.stripTags(htmlContent)
	}
	if strings.TrimSpace(converted) == "" {
		return p.stripTags(htmlContent)
	}
	return converted
}

func (p *GenericParser) stripTags(htmlContent string) string {
	stripped := html.UnescapeString(p.stripPolicy.Sanitize(htmlContent))
	return strings.Join(strings.Fields(stripped), " ")
}

// convertCSV renders rows as a pipe table and records the grid as a table
// element with the first row treated as the header.
func convertCSV(path string) (*convertResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV content: %w", err)
	}

	var builder strings.Builder
	for _, row := range rows {
		builder.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	tables := make([]map[string]interface{}, 0, 1)
	if len(rows) > 0 {
		table := map[string]interface{}{
			"headers":   rows[0],
			"row_count": len(rows) - 1,
		}
		if len(rows) > 1 {
			table["rows"] = rows[1:]
		}
		tables = append(tables, table)
	}

	return &convertResult{
		text:     builder.String(),
		metadata: map[string]interface{}{"row_count": len(rows)},
		pages:    1,
		tables:   tables,
		format:   "csv",
	}, nil
}

// convertJSON validates and pretty-prints the payload.
func convertJSON(path string) (*convertResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("invalid JSON content: %w", err)
	}

	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}

	return &convertResult{
		text:     string(pretty),
		metadata: map[string]interface{}{"valid_json": true},
		pages:    1,
		format:   "json",
	}, nil
}

// convertSpreadsheet renders every sheet as a pipe table under a sheet-name
// heading. Each sheet counts as one page.
func convertSpreadsheet(path string) (*convertResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	var builder strings.Builder
	tables := make([]map[string]interface{}, 0)

	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		builder.WriteString("# " + sheet + "\n\n")
		for _, row := range rows {
			builder.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		builder.WriteString("\n")

		table := map[string]interface{}{
			"sheet_name": sheet,
			"headers":    rows[0],
			"row_count":  len(rows) - 1,
		}
		if len(rows) > 1 {
			table["rows"] = rows[1:]
		}
		tables = append(tables, table)
	}

	pages := len(sheets)
	if pages < 1 {
		pages = 1
	}

	return &convertResult{
		text:     builder.String(),
		metadata: map[string]interface{}{"sheet_count": len(sheets)},
		pages:    pages,
		tables:   tables,
		format:   "spreadsheet",
	}, nil
}

// convertEmail reads an RFC 822 message, keeping the text/plain body and
// falling back to converted HTML parts.
func (p *GenericParser) convertEmail(path string) (*convertResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mr, err := mail.CreateReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	metadata := map[string]interface{}{}
	if subject, hErr := mr.Header.Subject(); hErr == nil && subject != "" {
		metadata["subject"] = subject
	}
	if date, hErr := mr.Header.Date(); hErr == nil && !date.IsZero() {
		metadata["date"] = date.Format(time.RFC3339)
	}
	if from, hErr := mr.Header.AddressList("From"); hErr == nil && len(from) > 0 {
		metadata["from"] = from[0].String()
	}
	if to, hErr := mr.Header.AddressList("To"); hErr == nil && len(to) > 0 {
		addrs := make([]string, 0, len(to))
		for _, addr := range to {
			addrs = append(addrs, addr.String())
		}
		metadata["to"] = addrs
	}

	var plainBody, htmlBody string
	for {
		part, partErr := mr.NextPart()
		if partErr == io.EOF {
			break
		}
		if partErr != nil {
			// Keep whatever body parts were already read
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()

		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}
		switch {
		case strings.HasPrefix(contentType, "text/plain") && plainBody == "":
			plainBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		}
	}

	text := strings.TrimSpace(plainBody)
	if text == "" && htmlBody != "" {
		text = strings.TrimSpace(p.htmlToMarkdown(htmlBody))
	}

	return &convertResult{
		text:     text,
		metadata: metadata,
		pages:    1,
		format:   "email",
	}, nil
}

// extractMarkdownHeadings mines markdown heading lines from converted text.
// Lines opening with more than six hashes are not headings.
func extractMarkdownHeadings(text string) []map[string]interface{} {
	headings := make([]map[string]interface{}, 0)
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		level := len(line) - len(strings.TrimLeft(line, "#"))
		if level > maxHeadingLevel {
			continue
		}
		headings = append(headings, map[string]interface{}{
			"level": level,
			"text":  strings.TrimLeft(line, "# "),
		})
	}
	return headings
}
