package parsing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/models"
	"github.com/ternarybob/lectio/internal/parser"
)

type stubParser struct {
	name      string
	mimetypes []string
	gotBytes  int
}

func (s *stubParser) Parse(ctx context.Context, content []byte, filename string) *models.ParsingResult {
	s.gotBytes = len(content)
	return models.NewParsingResult(s.name, nil, 1, nil)
}

func (s *stubParser) SupportedMimetypes() []string {
	return s.mimetypes
}

func newTestService(parsers ...*stubParser) *Service {
	logger := arbor.NewLogger()
	registry := parser.NewRegistry(logger)
	for _, p := range parsers {
		registry.Register(p)
	}
	return NewService(registry, logger)
}

func TestParseDocumentRoutesByMimetype(t *testing.T) {
	text := &stubParser{name: "text", mimetypes: []string{"text/plain"}}
	pdf := &stubParser{name: "pdf", mimetypes: []string{"application/pdf"}}
	service := newTestService(text, pdf)

	result := service.ParseDocument(context.Background(), []byte("hello"), "application/pdf", "a.pdf")

	require.True(t, result.Success())
	assert.Equal(t, "pdf", result.Text)
	assert.Equal(t, 5, pdf.gotBytes)
}

func TestParseDocumentNormalizesMimetype(t *testing.T) {
	pdf := &stubParser{name: "pdf", mimetypes: []string{"application/pdf"}}
	service := newTestService(pdf)

	result := service.ParseDocument(context.Background(), []byte("x"), "Application/PDF; charset=binary", "a.pdf")

	require.True(t, result.Success())
	assert.Equal(t, "pdf", result.Text)
}

func TestParseDocumentUnsupportedType(t *testing.T) {
	service := newTestService(&stubParser{name: "text", mimetypes: []string{"text/plain"}})

	result := service.ParseDocument(context.Background(), []byte("x"), "application/x-unknown", "blob")

	require.False(t, result.Success())
	assert.Equal(t, "Unsupported document type: application/x-unknown", result.Error)
	assert.Empty(t, result.Text)

	payload := result.ToMap()
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, result.Error, payload["error"])
}

func TestParseDocumentSniffsUntypedContent(t *testing.T) {
	text := &stubParser{name: "text", mimetypes: []string{"text/plain"}}
	service := newTestService(text)

	result := service.ParseDocument(context.Background(), []byte("plain text body"), "application/octet-stream", "note")
	require.True(t, result.Success())
	assert.Equal(t, "text", result.Text)

	result = service.ParseDocument(context.Background(), []byte("more plain text"), "", "note")
	require.True(t, result.Success())
	assert.Equal(t, "text", result.Text)
}

func TestParseDocumentRecordsResolvedMimetype(t *testing.T) {
	text := &stubParser{name: "text", mimetypes: []string{"text/plain"}}
	service := newTestService(text)

	// Sniffed type for an untyped upload lands in the result metadata.
	result := service.ParseDocument(context.Background(), []byte("plain text body"), "", "note")
	require.True(t, result.Success())
	assert.Equal(t, "text/plain", result.Metadata["mimetype"])

	// Declared types are normalized before recording.
	result = service.ParseDocument(context.Background(), []byte("x"), "Text/Plain; charset=utf-8", "note.txt")
	assert.Equal(t, "text/plain", result.Metadata["mimetype"])

	// Unsupported types still carry the normalized value for the record.
	result = service.ParseDocument(context.Background(), []byte("x"), "application/x-unknown", "blob")
	require.False(t, result.Success())
	assert.Equal(t, "application/x-unknown", result.Metadata["mimetype"])
}

func TestSupportedMimetypes(t *testing.T) {
	service := newTestService(
		&stubParser{name: "a", mimetypes: []string{"text/plain"}},
		&stubParser{name: "b", mimetypes: []string{"application/pdf"}},
	)

	assert.Equal(t, []string{"application/pdf", "text/plain"}, service.SupportedMimetypes())
}

func TestNormalizeMimetype(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text/html; charset=utf-8", "text/html"},
		{"  Application/PDF  ", "application/pdf"},
		{"TEXT/PLAIN;charset=big5;boundary=x", "text/plain"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMimetype(tt.in), tt.in)
	}
}
