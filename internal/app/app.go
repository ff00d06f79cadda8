// -----------------------------------------------------------------------
// App - dependency wiring and lifecycle
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/handlers"
	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
	"github.com/ternarybob/lectio/internal/parser"
	"github.com/ternarybob/lectio/internal/services/analyzer"
	"github.com/ternarybob/lectio/internal/services/cache"
	"github.com/ternarybob/lectio/internal/services/classifier"
	"github.com/ternarybob/lectio/internal/services/documents"
	"github.com/ternarybob/lectio/internal/services/events"
	"github.com/ternarybob/lectio/internal/services/files"
	"github.com/ternarybob/lectio/internal/services/llm"
	"github.com/ternarybob/lectio/internal/services/ocr"
	"github.com/ternarybob/lectio/internal/services/parsing"
	"github.com/ternarybob/lectio/internal/services/prompts"
	"github.com/ternarybob/lectio/internal/services/questions"
	"github.com/ternarybob/lectio/internal/services/report"
	"github.com/ternarybob/lectio/internal/services/scheduler"
	"github.com/ternarybob/lectio/internal/services/stats"
	"github.com/ternarybob/lectio/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	ctx       context.Context
	cancelCtx context.CancelFunc

	StorageManager interfaces.StorageManager
	FileStore      *files.Store

	// Pipeline services
	ParsingService  interfaces.ParsingService
	AIService       interfaces.AIService
	AnalyzerService interfaces.AnalyzerService
	AnalysisCache   interfaces.AnalysisCache
	DocumentService interfaces.DocumentService
	QuestionService interfaces.QuestionService
	StatsService    interfaces.StatsService

	// Event-driven services
	EventService     interfaces.EventService
	SchedulerService interfaces.SchedulerService

	PromptLibrary *prompts.Library
	ReportService *report.Service

	// HTTP handlers
	AnalysisHandler *handlers.AnalysisHandler
	DocumentHandler *handlers.DocumentHandler
	QuestionHandler *handlers.QuestionHandler
	StatusHandler   *handlers.StatusHandler
	WSHandler       *handlers.WebSocketHandler

	// LogWriter streams filtered log lines to websocket clients.
	LogWriter *handlers.WebSocketWriter
}

// New initializes the application with all dependencies.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	var err error
	app.StorageManager, err = storage.NewStorageManager(logger, cfg)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.FileStore, err = files.NewStore(&cfg.Files, logger)
	if err != nil {
		app.StorageManager.Close()
		cancel()
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	app.EventService = events.NewService(logger)
	if err := events.SubscribeLoggerToAllEvents(app.EventService, logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to subscribe event logger: %w", err)
	}
	app.WSHandler = handlers.NewWebSocketHandler(logger)
	if err := app.WSHandler.BindEvents(app.EventService); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to bind websocket events: %w", err)
	}

	app.LogWriter, err = handlers.NewWebSocketWriter(app.WSHandler, arbormodels.WriterConfiguration{
		Type:       arbormodels.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}, &cfg.WebSocket)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize log stream writer: %w", err)
	}

	// Parser registry with all format parsers. OCR degrades gracefully
	// when the engine is missing from the host.
	ocrService := ocr.NewService(cfg.Parsing.TesseractPath, logger)
	registry := parser.NewRegistry(logger)
	registry.Register(parser.NewGenericParser(logger).WithStagingDir(app.FileStore.StagingDir()))
	registry.Register(parser.NewPDFParser(logger))
	registry.Register(parser.NewWordParser(logger))
	registry.Register(parser.NewImageParser(logger, ocrService, cfg.Parsing.OCRLanguages))
	app.ParsingService = parsing.NewService(registry, logger)

	app.AIService, err = llm.NewAIService(cfg, app.StorageManager.KeyValueStorage(), logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	if app.AIService == nil {
		logger.Warn().Msg("No AI provider configured; analysis degrades to heuristics only")
	}

	classifierService, err := classifier.NewService(cfg.Analysis.RulesFile, app.AIService, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}
	app.AnalyzerService = analyzer.NewService(classifierService, app.AIService, logger)

	// Cache is optional; a missing Redis only disables reuse.
	redisCache, err := cache.NewRedisCache(&cfg.Cache, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis cache unavailable; continuing without it")
	} else if redisCache != nil {
		app.AnalysisCache = redisCache
	}

	app.PromptLibrary = prompts.NewLibrary()
	app.ReportService = report.NewService(logger)

	app.DocumentService = documents.NewService(
		app.StorageManager.DocumentStorage(),
		app.FileStore,
		app.ParsingService,
		classifierService,
		app.AnalyzerService,
		app.AnalysisCache,
		app.EventService,
		app.ReportService,
		cfg.MaxUploadBytes(),
		logger,
	)
	app.QuestionService = questions.NewService(app.PromptLibrary, app.AIService, logger)
	app.StatsService = stats.NewService(
		app.StorageManager.DocumentStorage(),
		app.StorageManager.KeyValueStorage(),
		logger,
	)

	if err := app.initScheduler(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	defaultDepth, err := models.ParseAnalysisDepth(cfg.Analysis.DefaultDepth)
	if err != nil {
		defaultDepth = models.DepthStandard
	}

	app.AnalysisHandler = handlers.NewAnalysisHandler(
		app.ParsingService, app.AnalyzerService, cfg.MaxUploadBytes(), defaultDepth, logger)
	app.DocumentHandler = handlers.NewDocumentHandler(
		app.DocumentService, cfg.MaxUploadBytes(), defaultDepth, logger)
	app.QuestionHandler = handlers.NewQuestionHandler(app.QuestionService, logger)
	app.StatusHandler = handlers.NewStatusHandler(
		app.StorageManager, app.AIService, app.AnalysisCache, app.StatsService, logger)

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("provider", string(cfg.LLM.Provider)).
		Msg("Application initialized")
	return app, nil
}

// initScheduler registers the maintenance jobs and starts the scheduler
// when enabled.
func (a *App) initScheduler() error {
	schedulerService := scheduler.NewService(a.Logger)
	a.SchedulerService = schedulerService

	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}

	staleAge, err := time.ParseDuration(a.Config.Scheduler.StaleAge)
	if err != nil {
		return fmt.Errorf("invalid scheduler stale_age %q: %w", a.Config.Scheduler.StaleAge, err)
	}

	if err := schedulerService.RegisterJob(
		"stats-refresh",
		a.Config.Scheduler.StatsSchedule,
		"Refresh the library statistics snapshot",
		func() error {
			_, err := a.StatsService.Refresh(a.ctx)
			return err
		},
	); err != nil {
		return err
	}

	if err := schedulerService.RegisterJob(
		"temp-sweep",
		a.Config.Scheduler.SweepSchedule,
		"Remove stale staged conversion files",
		func() error {
			_, err := a.FileStore.SweepStaging(staleAge)
			return err
		},
	); err != nil {
		return err
	}

	// Value-log GC only applies to the embedded backend.
	if gc, ok := a.StorageManager.(interface{ RunValueLogGC() error }); ok {
		if err := schedulerService.RegisterJob(
			"db-gc",
			a.Config.Scheduler.GCSchedule,
			"Compact the embedded database value log",
			gc.RunValueLogGC,
		); err != nil {
			return err
		}
	}

	if err := schedulerService.Start(); err != nil {
		return err
	}

	// Warm the stats snapshot so the first request never pays for it.
	if _, err := a.StatsService.Refresh(a.ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Initial stats refresh failed")
	}
	return nil
}

// Close shuts down all components in reverse dependency order.
func (a *App) Close() error {
	a.cancelCtx()

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
		}
	}
	if a.LogWriter != nil {
		if err := a.LogWriter.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Log stream writer close failed")
		}
	}
	if a.WSHandler != nil {
		a.WSHandler.Close()
	}
	if a.EventService != nil {
		a.EventService.Close()
	}
	if a.AnalysisCache != nil {
		if err := a.AnalysisCache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Cache close failed")
		}
	}
	if a.AIService != nil {
		if err := a.AIService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("AI provider close failed")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}
