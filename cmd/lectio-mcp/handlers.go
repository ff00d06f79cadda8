package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// handleAnalyzeText implements the analyze_text tool
func handleAnalyzeText(analyzerService interfaces.AnalyzerService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil || text == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: text parameter is required"),
				},
			}, nil
		}

		depth := models.DepthStandard
		if raw := request.GetString("depth", ""); raw != "" {
			parsed, err := models.ParseAnalysisDepth(raw)
			if err != nil {
				return &mcp.CallToolResult{
					Content: []mcp.Content{
						mcp.NewTextContent(fmt.Sprintf("Error: %v", err)),
					},
				}, nil
			}
			depth = parsed
		}

		parsingResult := models.NewParsingResult(text, map[string]interface{}{
			"mimetype": "text/plain",
			"source":   "mcp",
		}, 1, nil)

		result := analyzerService.AnalyzeDocument(ctx, parsingResult, depth)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatAnalysis(result, depth)),
			},
		}, nil
	}
}

// handleGetDocument implements the get_document tool
func handleGetDocument(documentStorage interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: document_id parameter is required"),
				},
			}, nil
		}

		doc, err := documentStorage.GetDocument(ctx, docID)
		if err != nil {
			logger.Warn().Err(err).Str("doc_id", docID).Msg("GetDocument failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Document not found: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatDocument(doc)),
			},
		}, nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(documentStorage interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}
		if limit < 1 {
			limit = 20
		}

		documentType := request.GetString("document_type", "")
		if documentType != "" {
			if _, err := models.ParseEducationalDocumentType(documentType); err != nil {
				return &mcp.CallToolResult{
					Content: []mcp.Content{
						mcp.NewTextContent(fmt.Sprintf("Error: %v", err)),
					},
				}, nil
			}
		}

		docs, err := documentStorage.ListDocuments(ctx, interfaces.ListOptions{
			Limit:        limit,
			DocumentType: documentType,
		})
		if err != nil {
			logger.Error().Err(err).Msg("ListDocuments failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("List error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatDocumentList(docs, documentType)),
			},
		}, nil
	}
}

// handleLibraryStats implements the library_stats tool
func handleLibraryStats(statsService interfaces.StatsService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snapshot, err := statsService.Current(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Stats lookup failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Stats error: %v", err)),
				},
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatLibraryStats(snapshot)),
			},
		}, nil
	}
}
