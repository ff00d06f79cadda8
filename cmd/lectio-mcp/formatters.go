package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/lectio/internal/models"
)

// formatAnalysis formats an analysis result as markdown
func formatAnalysis(result *models.AnalysisResult, depth models.AnalysisDepth) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Analysis (%s depth)\n\n", depth))
	sb.WriteString(fmt.Sprintf("**Document type:** %s\n\n", result.DocumentType))

	writeJSONSection(&sb, "Structure", result.Structure)
	writeJSONSection(&sb, "Educational Elements", result.EducationalElements)
	writeJSONSection(&sb, "AI Insights", result.AIInsights)
	writeJSONSection(&sb, "Content Relationships", result.ContentRelationships)

	if len(result.Errors) > 0 {
		sb.WriteString("### Issues\n\n")
		for _, e := range result.Errors {
			sb.WriteString(fmt.Sprintf("- %s\n", e))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDocument formats a single library record as markdown
func formatDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Filename))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", doc.DocumentType))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", doc.Status))
	sb.WriteString(fmt.Sprintf("**Content type:** %s\n", doc.ContentType))
	sb.WriteString(fmt.Sprintf("**Size:** %d bytes, %d pages, %d words\n", doc.FileSize, doc.PageCount, doc.WordCount))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n", doc.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n\n", doc.UpdatedAt.Format(time.RFC3339)))

	if doc.ParseError != "" {
		sb.WriteString(fmt.Sprintf("**Parse error:** %s\n\n", doc.ParseError))
	}

	if doc.Analysis != nil {
		depth, err := models.ParseAnalysisDepth(doc.AnalysisDepth)
		if err != nil {
			depth = models.DepthStandard
		}
		sb.WriteString(formatAnalysis(doc.Analysis, depth))
	}

	if len(doc.Metadata) > 0 {
		sb.WriteString("## Metadata\n\n```json\n")
		metadataJSON, _ := json.MarshalIndent(doc.Metadata, "", "  ")
		sb.WriteString(string(metadataJSON))
		sb.WriteString("\n```\n")
	}

	return sb.String()
}

// formatDocumentList formats a document listing as markdown
func formatDocumentList(docs []*models.Document, documentType string) string {
	var sb strings.Builder
	if documentType != "" {
		sb.WriteString(fmt.Sprintf("## Documents (%d, type %s)\n\n", len(docs), documentType))
	} else {
		sb.WriteString(fmt.Sprintf("## Documents (%d)\n\n", len(docs)))
	}

	if len(docs) == 0 {
		sb.WriteString("No documents found.\n")
		return sb.String()
	}

	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, doc.Filename, doc.ID))
		sb.WriteString(fmt.Sprintf("   %s, %s, %d words, updated %s\n",
			doc.DocumentType, doc.Status, doc.WordCount, doc.UpdatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatLibraryStats formats the stats snapshot as markdown
func formatLibraryStats(snapshot *models.LibraryStats) string {
	var sb strings.Builder
	sb.WriteString("## Library Statistics\n\n")
	sb.WriteString(fmt.Sprintf("**Total documents:** %d\n", snapshot.TotalDocuments))
	sb.WriteString(fmt.Sprintf("**Analyzed:** %d\n", snapshot.AnalyzedDocuments))
	sb.WriteString(fmt.Sprintf("**Failed parses:** %d\n", snapshot.FailedParses))
	sb.WriteString(fmt.Sprintf("**Total words:** %d (avg %.0f)\n", snapshot.TotalWordCount, snapshot.AverageWordCount))
	sb.WriteString(fmt.Sprintf("**Total file bytes:** %d\n", snapshot.TotalFileBytes))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n\n", snapshot.GeneratedAt.Format(time.RFC3339)))

	if len(snapshot.ByDocumentType) > 0 {
		sb.WriteString("### By document type\n\n")
		for docType, count := range snapshot.ByDocumentType {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", docType, count))
		}
		sb.WriteString("\n")
	}
	if len(snapshot.ByStatus) > 0 {
		sb.WriteString("### By status\n\n")
		for status, count := range snapshot.ByStatus {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", status, count))
		}
	}

	return sb.String()
}

func writeJSONSection(sb *strings.Builder, title string, data map[string]interface{}) {
	if len(data) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s\n\n```json\n", title))
	encoded, _ := json.MarshalIndent(data, "", "  ")
	sb.WriteString(string(encoded))
	sb.WriteString("\n```\n\n")
}
