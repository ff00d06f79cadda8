package parser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/ternarybob/arbor"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

const (
	// OCR output stripped shorter than this is treated as unusable.
	minImageTextLength = 20

	// Above this many characters the image is classed as a document scan
	// rather than a photo.
	imageDocumentTextThreshold = 100
)

// ImageParser extracts text from images via OCR. Images are converted to
// grayscale and staged to disk before recognition, since OCR engines work
// from file paths.
type ImageParser struct {
	logger    arbor.ILogger
	ocr       interfaces.OCRService
	languages string
	tempDir   string
}

// Compile-time interface assertion
var _ interfaces.DocumentParser = (*ImageParser)(nil)

// NewImageParser creates an image parser using the given OCR engine.
// The languages hint follows tesseract syntax; empty defaults to
// English plus traditional Chinese.
func NewImageParser(logger arbor.ILogger, ocr interfaces.OCRService, languages string) *ImageParser {
	if languages == "" {
		languages = "eng+chi_tra"
	}

	tempDir := filepath.Join(os.TempDir(), "lectio-ocr")
	os.MkdirAll(tempDir, 0755)

	return &ImageParser{
		logger:    logger,
		ocr:       ocr,
		languages: languages,
		tempDir:   tempDir,
	}
}

// SupportedMimetypes returns the MIME types this parser handles.
func (p *ImageParser) SupportedMimetypes() []string {
	return []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/tiff",
		"image/bmp",
		"image/webp",
	}
}

// Parse decodes the image, runs OCR on a grayscale copy and classifies the
// result. Failures never escape: they are folded into the result's error
// field.
func (p *ImageParser) Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult {
	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("Image parsing failed: %v", err))
	}

	metadata := imageMetadata(img, format)

	if p.ocr == nil || !p.ocr.Available() {
		return models.NewErrorParsingResult("Image parsing failed: OCR engine not available")
	}

	text, err := p.runOCR(ctx, img)
	if err != nil {
		return models.NewErrorParsingResult(fmt.Sprintf("Image parsing failed: %v", err))
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < minImageTextLength {
		result := models.NewParsingResult("[Image with limited or no extractable text]", metadata, 1, nil)
		result.Error = "OCR extracted limited text; consider using AI image description"
		return result
	}

	imageType := "photo"
	if utf8.RuneCountInString(text) > imageDocumentTextThreshold {
		imageType = "document"
	}

	structure := map[string]interface{}{
		"image_type":          imageType,
		"educational_content": detectEducationalContent(text),
	}

	result := models.NewParsingResult(text, metadata, 1, structure)
	result.Tables = extractImageTables(text)
	return result
}

// runOCR stages a grayscale PNG copy of the image to a scoped temp file and
// invokes the OCR engine on it. The staged file is removed on every path.
func (p *ImageParser) runOCR(ctx context.Context, img image.Image) (string, error) {
	tempFile, err := os.CreateTemp(p.tempDir, "ocr_*.png")
	if err != nil {
		return "", fmt.Errorf("failed to stage image for OCR: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if err := png.Encode(tempFile, toGrayscale(img)); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to encode staged image: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", err
	}

	return p.ocr.Recognize(ctx, tempPath, p.languages)
}

// toGrayscale renders the image onto a grayscale canvas. Dropping color
// noticeably improves recognition on photographed documents.
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

func imageMetadata(img image.Image, format string) map[string]interface{} {
	bounds := img.Bounds()
	return map[string]interface{}{
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
		"format": format,
		"mode":   colorMode(img),
		"dpi":    nil,
	}
}

// colorMode names the decoded color model.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "grayscale"
	case *image.RGBA, *image.RGBA64:
		return "rgba"
	case *image.NRGBA, *image.NRGBA64:
		return "nrgba"
	case *image.YCbCr:
		return "ycbcr"
	case *image.CMYK:
		return "cmyk"
	case *image.Paletted:
		return "paletted"
	default:
		return "unknown"
	}
}

// detectEducationalContent applies a cheap keyword and question-mark scan
// so downstream classification can prioritize OCR-heavy images.
func detectEducationalContent(text string) map[string]interface{} {
	keywords := []string{"exam", "quiz", "test", "worksheet", "exercise", "考試", "測驗", "練習", "作業"}

	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	questionMarks := strings.Count(text, "?") + strings.Count(text, "？")

	return map[string]interface{}{
		"keyword_hits":       hits,
		"question_marks":     questionMarks,
		"likely_educational": hits > 0 || questionMarks >= 3,
	}
}

// extractImageTables is an extension point and currently always returns an
// empty list. OCR output rarely preserves table geometry well enough to
// reconstruct rows from plain text.
// TODO: detect tables and forms on scanned worksheets
func extractImageTables(text string) []map[string]interface{} {
	return []map[string]interface{}{}
}
