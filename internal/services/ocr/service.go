// -----------------------------------------------------------------------
// OCR Service - external tesseract engine invocation
// -----------------------------------------------------------------------

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// Service invokes the tesseract binary on staged image files. Recognition
// is an external capability: lectio does not bundle an OCR engine, it
// shells out to whatever the host provides.
type Service struct {
	binaryPath string
	logger     arbor.ILogger

	checkOnce sync.Once
	available bool
}

var _ interfaces.OCRService = (*Service)(nil)

// NewService creates an OCR service around the given tesseract binary.
// A bare name is resolved via PATH on first use.
func NewService(binaryPath string, logger arbor.ILogger) *Service {
	if binaryPath == "" {
		binaryPath = "tesseract"
	}
	return &Service{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Available reports whether the OCR binary can be invoked on this host.
// The lookup result is cached for the process lifetime.
func (s *Service) Available() bool {
	s.checkOnce.Do(func() {
		resolved, err := exec.LookPath(s.binaryPath)
		if err != nil {
			s.logger.Warn().
				Str("binary", s.binaryPath).
				Msg("OCR engine not found; image parsing will be degraded")
			return
		}
		s.available = true
		s.logger.Debug().Str("binary", resolved).Msg("OCR engine resolved")
	})
	return s.available
}

// Recognize runs OCR over the image file at the given path and returns the
// extracted text. The language hint uses tesseract syntax ("eng+chi_tra").
func (s *Service) Recognize(ctx context.Context, imagePath string, languages string) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("OCR engine %q is not available", s.binaryPath)
	}
	if languages == "" {
		languages = "eng+chi_tra"
	}

	// "stdout" directs recognized text to standard output instead of a file.
	cmd := exec.CommandContext(ctx, s.binaryPath, imagePath, "stdout", "-l", languages)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("OCR failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	s.logger.Debug().
		Str("image", imagePath).
		Str("languages", languages).
		Int("text_length", len(text)).
		Msg("OCR recognition completed")

	return text, nil
}
