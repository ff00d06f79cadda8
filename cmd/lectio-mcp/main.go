package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/services/analyzer"
	"github.com/ternarybob/lectio/internal/services/classifier"
	"github.com/ternarybob/lectio/internal/services/llm"
	"github.com/ternarybob/lectio/internal/services/stats"
	"github.com/ternarybob/lectio/internal/storage"
)

func main() {
	configPath := os.Getenv("LECTIO_CONFIG")
	if configPath == "" {
		configPath = "lectio.toml"
	}

	config, err := common.LoadFromFile(nil, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console-only warn logger; anything louder corrupts MCP stdio framing.
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	aiService, err := llm.NewAIService(config, storageManager.KeyValueStorage(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize AI provider")
	}
	if aiService != nil {
		defer aiService.Close()
	}

	classifierService, err := classifier.NewService(config.Analysis.RulesFile, aiService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize classifier")
	}
	analyzerService := analyzer.NewService(classifierService, aiService, logger)
	statsService := stats.NewService(
		storageManager.DocumentStorage(),
		storageManager.KeyValueStorage(),
		logger,
	)

	mcpServer := server.NewMCPServer(
		"lectio",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAnalyzeTextTool(), handleAnalyzeText(analyzerService, logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(storageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(storageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createLibraryStatsTool(), handleLibraryStats(statsService, logger))

	// Blocks on stdio until the client disconnects
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
