package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// fakeParsing returns a success result for text/plain and an error result
// for everything else.
type fakeParsing struct{}

func (f *fakeParsing) ParseDocument(ctx context.Context, content []byte, mimetype string, filename string) *models.ParsingResult {
	if strings.HasPrefix(mimetype, "text/plain") || mimetype == "" {
		return models.NewParsingResult(string(content), nil, 1, nil)
	}
	return models.NewErrorParsingResult("Unsupported document type: " + mimetype)
}

func (f *fakeParsing) SupportedMimetypes() []string {
	return []string{"text/plain", "application/pdf"}
}

type fakeAnalyzer struct{}

func (f *fakeAnalyzer) AnalyzeDocument(ctx context.Context, parsingResult *models.ParsingResult, depth models.AnalysisDepth) *models.AnalysisResult {
	return &models.AnalysisResult{
		DocumentType:        string(models.DocTypeWorksheet),
		Structure:           map[string]interface{}{},
		EducationalElements: map[string]interface{}{},
		AIInsights:          map[string]interface{}{"summary": "ok"},
	}
}

// fakeDocuments is a canned DocumentService.
type fakeDocuments struct {
	doc *models.Document
}

func (f *fakeDocuments) Upload(ctx context.Context, input interfaces.UploadInput) (*models.Document, *models.ParsingResult, error) {
	return f.doc, models.NewParsingResult(string(input.Content), nil, 1, nil), nil
}

func (f *fakeDocuments) Get(ctx context.Context, id string) (*models.Document, error) {
	if f.doc == nil || f.doc.ID != id {
		return nil, interfaces.ErrDocumentNotFound
	}
	return f.doc, nil
}

func (f *fakeDocuments) List(ctx context.Context, opts interfaces.ListOptions) ([]*models.Document, int, error) {
	if f.doc == nil {
		return nil, 0, nil
	}
	return []*models.Document{f.doc}, 1, nil
}

func (f *fakeDocuments) Content(ctx context.Context, id string) ([]byte, *models.Document, error) {
	if f.doc == nil || f.doc.ID != id {
		return nil, nil, interfaces.ErrDocumentNotFound
	}
	return []byte("file bytes"), f.doc, nil
}

func (f *fakeDocuments) Analyze(ctx context.Context, id string, depth models.AnalysisDepth) (*models.Document, error) {
	if f.doc == nil || f.doc.ID != id {
		return nil, interfaces.ErrDocumentNotFound
	}
	f.doc.AnalysisDepth = string(depth)
	f.doc.Status = models.DocumentStatusAnalyzed
	return f.doc, nil
}

func (f *fakeDocuments) Report(ctx context.Context, id string) ([]byte, error) {
	if f.doc == nil || f.doc.ID != id {
		return nil, interfaces.ErrDocumentNotFound
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id string) error {
	if f.doc == nil || f.doc.ID != id {
		return interfaces.ErrDocumentNotFound
	}
	f.doc = nil
	return nil
}

func multipartBody(t *testing.T, filename, contentType, depth string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if depth != "" {
		require.NoError(t, writer.WriteField("analysis_depth", depth))
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyzeHandler(t *testing.T) {
	handler := NewAnalysisHandler(&fakeParsing{}, &fakeAnalyzer{}, 1024*1024, models.DepthStandard, arbor.NewLogger())

	t.Run("successful analysis", func(t *testing.T) {
		body, contentType := multipartBody(t, "notes.txt", "text/plain", "deep", []byte("1. What is 2+2?"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.AnalyzeHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeJSON(t, rec)
		assert.Equal(t, true, response["success"])
		assert.Equal(t, string(models.DocTypeWorksheet), response["document_type"])
		assert.Nil(t, response["error"])
		assert.NotNil(t, response["analysis"])
	})

	t.Run("unsupported type reports error", func(t *testing.T) {
		body, contentType := multipartBody(t, "a.bin", "application/x-archive", "", []byte{0x01})
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.AnalyzeHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeJSON(t, rec)
		assert.Equal(t, false, response["success"])
		assert.Contains(t, response["error"], "Unsupported document type")
	})

	t.Run("invalid depth rejected", func(t *testing.T) {
		body, contentType := multipartBody(t, "notes.txt", "text/plain", "extreme", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.AnalyzeHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file rejected", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("analysis_depth", "basic"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.AnalyzeHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
		rec := httptest.NewRecorder()
		handler.AnalyzeHandler(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestSupportedFormatsHandler(t *testing.T) {
	handler := NewAnalysisHandler(&fakeParsing{}, &fakeAnalyzer{}, 0, models.DepthStandard, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/supported-formats", nil)
	rec := httptest.NewRecorder()
	handler.SupportedFormatsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	response := decodeJSON(t, rec)
	assert.Len(t, response["supported_mimetypes"], 2)
	assert.Len(t, response["analysis_depths"], 3)
}

func testDocument() *models.Document {
	return &models.Document{
		ID:           "doc_1",
		Filename:     "notes.txt",
		ContentType:  "text/plain",
		DocumentType: string(models.DocTypeWorksheet),
		Status:       models.DocumentStatusUploaded,
	}
}

func TestDocumentRouting(t *testing.T) {
	t.Run("get by id", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_1", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeJSON(t, rec)
		assert.Equal(t, "doc_1", response["id"])
	})

	t.Run("missing document is 404", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_nope", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("download sets attachment headers", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_1/download", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "notes.txt")
		assert.Equal(t, "file bytes", rec.Body.String())
	})

	t.Run("report returns pdf", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_1/report", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	})

	t.Run("analyze with depth", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/documents/doc_1/analyze",
			strings.NewReader(`{"analysis_depth": "deep"}`))
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeJSON(t, rec)
		assert.Equal(t, "deep", response["analysis_depth"])
	})

	t.Run("analyze with bad depth rejected", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/documents/doc_1/analyze",
			strings.NewReader(`{"analysis_depth": "extreme"}`))
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc_1", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodGet, "/api/documents/doc_1/summarize", nil)
		rec := httptest.NewRecorder()
		handler.RouteDocument(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocumentListHandler(t *testing.T) {
	handler := NewDocumentHandler(&fakeDocuments{doc: testDocument()}, 0, models.DepthStandard, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/documents?limit=5&offset=0", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	response := decodeJSON(t, rec)
	assert.Equal(t, float64(1), response["total"])
	assert.Equal(t, float64(5), response["limit"])
}

// fakeQuestions returns a canned payload.
type fakeQuestions struct {
	result map[string]interface{}
	err    error
}

func (f *fakeQuestions) Generate(ctx context.Context, req interfaces.QuestionRequest) (map[string]interface{}, error) {
	return f.result, f.err
}

func TestQuestionHandler(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		handler := NewQuestionHandler(&fakeQuestions{result: map[string]interface{}{"questions": []interface{}{}}}, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/questions/generate",
			strings.NewReader(`{"content": "fractions", "question_count": 3, "question_type": "multiple-choice"}`))
		rec := httptest.NewRecorder()
		handler.GenerateHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeJSON(t, rec)
		assert.Contains(t, response, "questions")
	})

	t.Run("missing content rejected", func(t *testing.T) {
		handler := NewQuestionHandler(&fakeQuestions{}, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/questions/generate",
			strings.NewReader(`{"topic": "math"}`))
		rec := httptest.NewRecorder()
		handler.GenerateHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid question type rejected", func(t *testing.T) {
		handler := NewQuestionHandler(&fakeQuestions{}, arbor.NewLogger())
		req := httptest.NewRequest(http.MethodPost, "/api/questions/generate",
			strings.NewReader(`{"content": "x", "question_type": "interpretive-dance"}`))
		rec := httptest.NewRecorder()
		handler.GenerateHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults", "", 20, 0},
		{"explicit values", "limit=50&offset=10", 50, 10},
		{"limit capped", "limit=500", 20, 0},
		{"negative ignored", "limit=-1&offset=-5", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/documents?"+tt.query, nil)
			limit, offset := GetPaginationParams(req)
			assert.Equal(t, tt.expectedLimit, limit)
			assert.Equal(t, tt.expectedOffset, offset)
		})
	}
}
