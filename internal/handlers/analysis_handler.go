// -----------------------------------------------------------------------
// Analysis Handler - ephemeral document analysis endpoint
// -----------------------------------------------------------------------

package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// analyzeRequest carries the validated form fields of POST /api/analyze.
type analyzeRequest struct {
	AnalysisDepth string `validate:"omitempty,oneof=basic standard deep"`
}

// AnalysisHandler serves the stateless analysis endpoints: analyze an
// uploaded file without persisting anything, and report the supported
// input formats.
type AnalysisHandler struct {
	parsing  interfaces.ParsingService
	analyzer interfaces.AnalyzerService
	validate *validator.Validate
	logger   arbor.ILogger

	maxUploadBytes int64
	defaultDepth   models.AnalysisDepth
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(
	parsing interfaces.ParsingService,
	analyzer interfaces.AnalyzerService,
	maxUploadBytes int64,
	defaultDepth models.AnalysisDepth,
	logger arbor.ILogger,
) *AnalysisHandler {
	return &AnalysisHandler{
		parsing:        parsing,
		analyzer:       analyzer,
		validate:       validator.New(),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		defaultDepth:   defaultDepth,
	}
}

// AnalyzeHandler handles POST /api/analyze: multipart file upload plus an
// optional analysis_depth field. Nothing is persisted.
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
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

	req := analyzeRequest{AnalysisDepth: r.FormValue("analysis_depth")}
	if err := h.validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "analysis_depth must be one of: basic, standard, deep")
		return
	}
	depth := h.defaultDepth
	if req.AnalysisDepth != "" {
		depth = models.AnalysisDepth(req.AnalysisDepth)
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
	if len(content) == 0 {
		WriteError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	parsingResult := h.parsing.ParseDocument(r.Context(), content, contentType, header.Filename)

	response := map[string]interface{}{
		"success":       parsingResult.Success(),
		"document_type": string(models.DocTypeUnknown),
		"page_count":    parsingResult.Pages,
		"word_count":    parsingResult.WordCount(),
		"analysis":      nil,
		"error":         nil,
	}
	if parsingResult.Error != "" {
		response["error"] = parsingResult.Error
	}

	if parsingResult.Success() || parsingResult.Text != "" {
		analysis := h.analyzer.AnalyzeDocument(r.Context(), parsingResult, depth)
		response["analysis"] = analysis.ToMap()
		response["document_type"] = analysis.DocumentType
	}

	h.logger.Info().
		Str("filename", header.Filename).
		Str("depth", string(depth)).
		Bool("success", parsingResult.Success()).
		Msg("Ephemeral analysis completed")

	WriteJSON(w, http.StatusOK, response)
}

// SupportedFormatsHandler handles GET /api/supported-formats.
func (h *AnalysisHandler) SupportedFormatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"supported_mimetypes": h.parsing.SupportedMimetypes(),
		"analysis_depths": []string{
			string(models.DepthBasic),
			string(models.DepthStandard),
			string(models.DepthDeep),
		},
	})
}
