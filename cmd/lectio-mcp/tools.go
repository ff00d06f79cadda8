package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAnalyzeTextTool returns the analyze_text tool definition
func createAnalyzeTextTool() mcp.Tool {
	return mcp.NewTool("analyze_text",
		mcp.WithDescription("Classify educational text and run depth-tiered analysis (structure, elements, AI insights)"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw text content to analyze"),
		),
		mcp.WithString("depth",
			mcp.Description("Analysis depth: basic, standard, or deep (default: standard)"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve a library document record by its unique ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID (format: doc_{uuid})"),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List library documents, newest first, optionally filtered by educational document type"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default: 20, max: 100)"),
		),
		mcp.WithString("document_type",
			mcp.Description("Filter: syllabus, lecture_notes, worksheet, exam, textbook, lesson_plan, unknown"),
		),
	)
}

// createLibraryStatsTool returns the library_stats tool definition
func createLibraryStatsTool() mcp.Tool {
	return mcp.NewTool("library_stats",
		mcp.WithDescription("Summarize the document library: counts by type and status, word totals, analyzed share"),
	)
}
