// -----------------------------------------------------------------------
// Document Service - library lifecycle orchestration
// -----------------------------------------------------------------------

package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
	"github.com/ternarybob/lectio/internal/services/cache"
	"github.com/ternarybob/lectio/internal/services/report"
)

// Service coordinates file storage, parsing, analysis and record keeping
// for the document library.
type Service struct {
	storage    interfaces.DocumentStorage
	files      interfaces.FileStore
	parsing    interfaces.ParsingService
	classifier interfaces.ClassifierService
	analyzer   interfaces.AnalyzerService
	cache      interfaces.AnalysisCache
	events     interfaces.EventService
	reports    *report.Service
	logger     arbor.ILogger

	maxUploadBytes int64
}

var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates the document service. The analysis cache and event
// service may be nil; both degrade to no-ops.
func NewService(
	storage interfaces.DocumentStorage,
	files interfaces.FileStore,
	parsing interfaces.ParsingService,
	classifier interfaces.ClassifierService,
	analyzer interfaces.AnalyzerService,
	analysisCache interfaces.AnalysisCache,
	events interfaces.EventService,
	reports *report.Service,
	maxUploadBytes int64,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:        storage,
		files:          files,
		parsing:        parsing,
		classifier:     classifier,
		analyzer:       analyzer,
		cache:          analysisCache,
		events:         events,
		reports:        reports,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload stores the file, parses it and creates the library record. A
// degraded parse still creates the record so the raw file is retained.
func (s *Service) Upload(ctx context.Context, input interfaces.UploadInput) (*models.Document, *models.ParsingResult, error) {
	if len(input.Content) == 0 {
		return nil, nil, fmt.Errorf("uploaded file is empty")
	}
	if s.maxUploadBytes > 0 && int64(len(input.Content)) > s.maxUploadBytes {
		return nil, nil, fmt.Errorf("uploaded file exceeds the %d byte limit", s.maxUploadBytes)
	}
	if strings.TrimSpace(input.Filename) == "" {
		input.Filename = "upload"
	}

	id := common.NewDocumentID()

	storagePath, err := s.files.Save(ctx, id, input.Filename, input.Content)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	parsingResult := s.parsing.ParseDocument(ctx, input.Content, input.ContentType, input.Filename)

	docType := models.DocTypeUnknown
	if s.classifier != nil && parsingResult.Text != "" {
		docType = s.classifier.Classify(parsingResult)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:           id,
		Filename:     input.Filename,
		ContentType:  contentTypeOf(parsingResult, input.ContentType),
		FileSize:     int64(len(input.Content)),
		StoragePath:  storagePath,
		PageCount:    parsingResult.Pages,
		WordCount:    parsingResult.WordCount(),
		ParseError:   parsingResult.Error,
		DocumentType: string(docType),
		Metadata:     input.Metadata,
		Status:       models.DocumentStatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !parsingResult.Success() && parsingResult.Text == "" {
		doc.Status = models.DocumentStatusFailed
	}

	if err := s.storage.StoreDocument(ctx, doc); err != nil {
		// The record is the source of truth; without it the stored file is
		// unreachable, so clean it up.
		if cleanupErr := s.files.Delete(ctx, storagePath); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("path", storagePath).Msg("Failed to clean up orphaned file")
		}
		return nil, nil, fmt.Errorf("failed to store document record: %w", err)
	}

	s.publish(ctx, interfaces.EventDocumentUploaded, doc)

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("filename", doc.Filename).
		Str("status", doc.Status).
		Int("word_count", doc.WordCount).
		Msg("Document uploaded")
	return doc, parsingResult, nil
}

// Get returns a document record by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.storage.GetDocument(ctx, id)
}

// List returns document records with pagination plus the total count for
// the applied filter.
func (s *Service) List(ctx context.Context, opts interfaces.ListOptions) ([]*models.Document, int, error) {
	docs, err := s.storage.ListDocuments(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.storage.CountDocuments(ctx, opts.DocumentType)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Content returns the stored raw file bytes and the record for download.
func (s *Service) Content(ctx context.Context, id string) ([]byte, *models.Document, error) {
	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.files.Read(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored file for %s: %w", id, err)
	}
	return content, doc, nil
}

// Analyze re-parses the stored file and runs AI analysis at the given
// depth, persisting the outcome on the record. Identical content already
// analyzed at the same depth is served from the cache.
func (s *Service) Analyze(ctx context.Context, id string, depth models.AnalysisDepth) (*models.Document, error) {
	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.files.Read(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file for %s: %w", id, err)
	}

	s.publish(ctx, interfaces.EventAnalysisStarted, doc)

	parsingResult := s.parsing.ParseDocument(ctx, content, doc.ContentType, doc.Filename)
	doc.PageCount = parsingResult.Pages
	doc.WordCount = parsingResult.WordCount()
	doc.ParseError = parsingResult.Error

	if !parsingResult.Success() && parsingResult.Text == "" {
		doc.Status = models.DocumentStatusFailed
		doc.Touch()
		if storeErr := s.storage.StoreDocument(ctx, doc); storeErr != nil {
			return nil, storeErr
		}
		s.publish(ctx, interfaces.EventAnalysisFailed, doc)
		return doc, fmt.Errorf("document %s could not be parsed: %s", id, parsingResult.Error)
	}

	analysis := s.analyzeWithCache(ctx, parsingResult, depth)

	doc.Analysis = analysis
	doc.AnalysisDepth = string(depth)
	doc.DocumentType = analysis.DocumentType
	doc.Status = models.DocumentStatusAnalyzed
	doc.Touch()

	if err := s.storage.StoreDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist analysis for %s: %w", id, err)
	}

	s.publish(ctx, interfaces.EventAnalysisCompleted, doc)

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("depth", string(depth)).
		Str("document_type", doc.DocumentType).
		Msg("Document analyzed")
	return doc, nil
}

// analyzeWithCache consults the analysis cache before running the full
// pipeline. Results from degraded parses are cached too; the content hash
// covers whatever text was recovered.
func (s *Service) analyzeWithCache(ctx context.Context, parsingResult *models.ParsingResult, depth models.AnalysisDepth) *models.AnalysisResult {
	if s.cache == nil {
		return s.analyzer.AnalyzeDocument(ctx, parsingResult, depth)
	}

	hash := cache.ContentHash(parsingResult.Text)
	if cached, found := s.cache.Get(ctx, hash, depth); found {
		s.logger.Debug().Str("depth", string(depth)).Msg("Analysis served from cache")
		return cached
	}

	result := s.analyzer.AnalyzeDocument(ctx, parsingResult, depth)
	if err := s.cache.Set(ctx, hash, depth, result); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache analysis result")
	}
	return result
}

// Report renders a PDF report of the document's latest analysis.
func (s *Service) Report(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reports.Generate(doc)
}

// Delete removes the record and its stored file.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to delete stored file")
	}

	s.publish(ctx, interfaces.EventDocumentDeleted, doc)

	s.logger.Info().Str("document_id", id).Msg("Document deleted")
	return nil
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, doc *models.Document) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: doc}); err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to publish event")
	}
}

// contentTypeOf prefers the normalized MIME type recorded by the parser
// over whatever the client supplied.
func contentTypeOf(parsingResult *models.ParsingResult, clientType string) string {
	if parsingResult.Metadata != nil {
		if mt, ok := parsingResult.Metadata["mimetype"].(string); ok && mt != "" {
			return mt
		}
	}
	if idx := strings.Index(clientType, ";"); idx >= 0 {
		clientType = clientType[:idx]
	}
	return strings.TrimSpace(clientType)
}
