// -----------------------------------------------------------------------
// Document Handler - library CRUD, download, report and re-analysis
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// DocumentHandler serves the /api/documents endpoints.
type DocumentHandler struct {
	documents interfaces.DocumentService
	logger    arbor.ILogger

	maxUploadBytes int64
	defaultDepth   models.AnalysisDepth
}

// NewDocumentHandler creates the document handler.
func NewDocumentHandler(
	documents interfaces.DocumentService,
	maxUploadBytes int64,
	defaultDepth models.AnalysisDepth,
	logger arbor.ILogger,
) *DocumentHandler {
	return &DocumentHandler{
		documents:      documents,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		defaultDepth:   defaultDepth,
	}
}

// UploadHandler handles POST /api/documents/upload: multipart file plus
// optional metadata form fields (title, subject, grade_level, tags).
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read uploaded file: %v", err))
		return
	}

	metadata := map[string]interface{}{}
	for _, field := range []string{"title", "subject", "grade_level", "tags"} {
		if value := r.FormValue(field); value != "" {
			metadata[field] = value
		}
	}
	if len(metadata) == 0 {
		metadata = nil
	}

	doc, parsingResult, err := h.documents.Upload(r.Context(), interfaces.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
		Metadata:    metadata,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"document": doc,
		"parsing":  parsingResult.ToMap(),
	})
}

// ListHandler handles GET /api/documents with limit/offset pagination and
// an optional ?type= filter.
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit, offset := GetPaginationParams(r)
	opts := interfaces.ListOptions{
		Limit:        limit,
		Offset:       offset,
		DocumentType: r.URL.Query().Get("type"),
	}

	docs, total, err := h.documents.List(r.Context(), opts)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// RouteDocument dispatches /api/documents/{id} and its sub-resources
// (download, report, analyze).
func (h *DocumentHandler) RouteDocument(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id := parts[0]
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.getDocument(w, r, id)
		case http.MethodDelete:
			h.deleteDocument(w, r, id)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case "download":
		if RequireMethod(w, r, http.MethodGet) {
			h.downloadDocument(w, r, id)
		}
	case "report":
		if RequireMethod(w, r, http.MethodGet) {
			h.reportDocument(w, r, id)
		}
	case "analyze":
		if RequireMethod(w, r, http.MethodPost) {
			h.analyzeDocument(w, r, id)
		}
	default:
		WriteError(w, http.StatusNotFound, "Unknown document action: "+action)
	}
}

func (h *DocumentHandler) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, id, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) deleteDocument(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documents.Delete(r.Context(), id); err != nil {
		h.writeDocumentError(w, id, err)
		return
	}
	WriteSuccess(w, "Document deleted")
}

func (h *DocumentHandler) downloadDocument(w http.ResponseWriter, r *http.Request, id string) {
	content, doc, err := h.documents.Content(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, id, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *DocumentHandler) reportDocument(w http.ResponseWriter, r *http.Request, id string) {
	pdf, err := h.documents.Report(r.Context(), id)
	if err != nil {
		h.writeDocumentError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"-report.pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *DocumentHandler) analyzeDocument(w http.ResponseWriter, r *http.Request, id string) {
	depth := h.defaultDepth
	if r.Body != nil {
		var body struct {
			AnalysisDepth string `json:"analysis_depth"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.AnalysisDepth != "" {
			parsed, err := models.ParseAnalysisDepth(body.AnalysisDepth)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "analysis_depth must be one of: basic, standard, deep")
				return
			}
			depth = parsed
		}
	}

	doc, err := h.documents.Analyze(r.Context(), id, depth)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "Document not found: "+id)
			return
		}
		// The record reflects the failure; surface both.
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status":   "error",
			"error":    err.Error(),
			"document": doc,
		})
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		WriteError(w, http.StatusNotFound, "Document not found: "+id)
		return
	}
	h.logger.Error().Err(err).Str("document_id", id).Msg("Document operation failed")
	WriteError(w, http.StatusInternalServerError, "Document operation failed")
}
