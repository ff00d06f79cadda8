package server

import (
	"net/http"

	"github.com/ternarybob/lectio/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (lifecycle events and log streaming)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Stateless analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler)
	mux.HandleFunc("/api/supported-formats", s.app.AnalysisHandler.SupportedFormatsHandler)

	// API routes - Document library
	mux.HandleFunc("/api/documents/upload", s.app.DocumentHandler.UploadHandler)
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.ListHandler)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.RouteDocument) // /{id}, /{id}/download, /{id}/report, /{id}/analyze

	// API routes - Question generation
	mux.HandleFunc("/api/questions/generate", s.app.QuestionHandler.GenerateHandler)

	// API routes - System
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/stats", s.app.StatusHandler.StatsHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "Endpoint not found")
	})

	return mux
}
