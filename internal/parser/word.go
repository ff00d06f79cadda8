package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// WordParser extracts text, core properties and structure from Word
// documents. Modern .docx containers are fully supported; legacy binary
// .doc files are not zip containers and produce an error result.
type WordParser struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentParser = (*WordParser)(nil)

// NewWordParser creates a new Word document parser.
func NewWordParser(logger arbor.ILogger) *WordParser {
	return &WordParser{logger: logger}
}

// SupportedMimetypes returns the MIME types this parser handles.
func (p *WordParser) SupportedMimetypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
	}
}

// Parse extracts body text, core properties and heading structure from a
// Word document. Failures never escape: they are folded into the result's
// error field.
func (p *WordParser) Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult {
	body, coreProps, err := p.readDocument(content)
	if err != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("Word document parsing failed: %v", err))
	}

	paragraphs := make([]string, 0, len(body.Paragraphs))
	for _, para := range body.Paragraphs {
		paragraphs = append(paragraphs, paragraphText(para))
	}
	text := strings.Join(paragraphs, "\n")

	structure := buildWordStructure(body, paragraphs)
	pages, _ := structure["estimated_pages"].(int)

	return models.NewParsingResult(text, coreMetadata(coreProps), pages, structure)
}

// ----- OOXML document model -----

type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

type docxParagraph struct {
	Properties *docxParaProps `xml:"pPr"`
	Runs       []docxRun      `xml:"r"`
}

type docxParaProps struct {
	Style *docxParaStyle `xml:"pStyle"`
}

type docxParaStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Texts []docxText `xml:"t"`
}

type docxText struct {
	Value string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// docxCoreProperties maps docProps/core.xml. Element names are matched by
// local name, so the dc/dcterms/cp namespace split does not matter here.
type docxCoreProperties struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Subject        string   `xml:"subject"`
	Creator        string   `xml:"creator"`
	Keywords       string   `xml:"keywords"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
	Category       string   `xml:"category"`
	Language       string   `xml:"language"`
}

// readDocument opens the OOXML container and decodes the main document part
// plus core properties.
func (p *WordParser) readDocument(content []byte) (*docxBody, *docxCoreProperties, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, nil, fmt.Errorf("not a valid Word document container: %w", err)
	}

	index := make(map[string]*zip.File, len(zipReader.File))
	for _, f := range zipReader.File {
		index[f.Name] = f
	}

	docFile, ok := index["word/document.xml"]
	if !ok {
		return nil, nil, fmt.Errorf("word/document.xml not found in container")
	}

	var document docxDocument
	if err := decodeZipXML(docFile, &document); err != nil {
		return nil, nil, fmt.Errorf("failed to decode document body: %w", err)
	}

	// Core properties are optional; a missing or unreadable part just
	// yields empty metadata.
	coreProps := &docxCoreProperties{}
	if coreFile, ok := index["docProps/core.xml"]; ok {
		if err := decodeZipXML(coreFile, coreProps); err != nil {
			coreProps = &docxCoreProperties{}
		}
	}

	return &document.Body, coreProps, nil
}

func decodeZipXML(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

// paragraphText concatenates the text runs of a paragraph.
func paragraphText(para docxParagraph) string {
	var builder strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Texts {
			builder.WriteString(t.Value)
		}
	}
	return builder.String()
}

func paragraphStyle(para docxParagraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// coreMetadata converts core properties into the metadata map. Every key
// is present even when the underlying property is unset.
func coreMetadata(props *docxCoreProperties) map[string]interface{} {
	return map[string]interface{}{
		"title":            props.Title,
		"author":           props.Creator,
		"subject":          props.Subject,
		"keywords":         props.Keywords,
		"created":          props.Created,
		"modified":         props.Modified,
		"last_modified_by": props.LastModifiedBy,
		"category":         props.Category,
		"language":         props.Language,
	}
}

// buildWordStructure derives headings, counts and the page estimate from
// the decoded body. The paragraphs slice is the pre-extracted text of
// body.Paragraphs in document order.
func buildWordStructure(body *docxBody, paragraphs []string) map[string]interface{} {
	headings := make([]map[string]interface{}, 0)
	for i, para := range body.Paragraphs {
		style := paragraphStyle(para)
		if !strings.HasPrefix(style, "Heading") {
			continue
		}
		headings = append(headings, map[string]interface{}{
			"level": headingLevel(style),
			"text":  paragraphs[i],
		})
	}

	totalChars := 0
	for _, text := range paragraphs {
		totalChars += utf8.RuneCountInString(text)
	}
	tablesCount := len(body.Tables)

	return map[string]interface{}{
		"headings":         headings,
		"tables_count":     tablesCount,
		"paragraphs_count": len(body.Paragraphs),
		"character_count":  totalChars,
		"estimated_pages":  estimatePages(totalChars, tablesCount),
	}
}

// headingLevel parses the numeric suffix of a heading style ("Heading2",
// "Heading 2"). A bare "Heading" style maps to level 1.
func headingLevel(style string) int {
	suffix := strings.TrimSpace(strings.TrimPrefix(style, "Heading"))
	if suffix == "" {
		return 1
	}
	if level, err := strconv.Atoi(suffix); err == nil && level >= 1 {
		return level
	}
	return 1
}

// estimatePages approximates the page count from character volume (an A4
// page with standard margins holds roughly 3000 characters) plus half a
// page per table, rounding halves up.
func estimatePages(totalChars, tablesCount int) int {
	pages := math.Round(float64(totalChars) / 3000.0)
	if pages < 1 {
		pages = 1
	}
	pages += float64(tablesCount) * 0.5
	return int(pages + 0.5)
}
