// -----------------------------------------------------------------------
// Report Service - analysis report assembly
// -----------------------------------------------------------------------

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/lectio/internal/models"
)

// BuildMarkdown assembles a human-readable analysis report for a document.
// The markdown is the source for the PDF download endpoint.
func BuildMarkdown(doc *models.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", doc.Filename)

	b.WriteString("## Document\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| ID | %s |\n", doc.ID)
	fmt.Fprintf(&b, "| Type | %s |\n", doc.DocumentType)
	fmt.Fprintf(&b, "| Status | %s |\n", doc.Status)
	fmt.Fprintf(&b, "| Pages | %d |\n", doc.PageCount)
	fmt.Fprintf(&b, "| Words | %d |\n", doc.WordCount)
	fmt.Fprintf(&b, "| Uploaded | %s |\n", doc.CreatedAt.Format("2006-01-02 15:04 UTC"))
	b.WriteString("\n")

	if doc.ParseError != "" {
		b.WriteString("## Parse Warnings\n\n")
		fmt.Fprintf(&b, "%s\n\n", doc.ParseError)
	}

	if doc.Analysis == nil {
		b.WriteString("## Analysis\n\nNo analysis has been run for this document.\n")
		return b.String()
	}

	analysis := doc.Analysis

	if depth := doc.AnalysisDepth; depth != "" {
		fmt.Fprintf(&b, "## Analysis (%s depth)\n\n", depth)
	} else {
		b.WriteString("## Analysis\n\n")
	}

	writeSection(&b, "Structure", analysis.Structure)
	writeSection(&b, "Educational Elements", analysis.EducationalElements)
	writeSection(&b, "AI Insights", analysis.AIInsights)
	if analysis.ContentRelationships != nil {
		writeSection(&b, "Content Relationships", analysis.ContentRelationships)
	}

	if len(analysis.Errors) > 0 {
		b.WriteString("### Issues\n\n")
		for _, msg := range analysis.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// writeSection renders a map as a definition list, recursing one level into
// nested maps and flattening lists. Keys are sorted for stable output.
func writeSection(b *strings.Builder, title string, section map[string]interface{}) {
	if len(section) == 0 {
		return
	}

	fmt.Fprintf(b, "### %s\n\n", title)
	for _, key := range sortedKeys(section) {
		writeValue(b, key, section[key], 0)
	}
	b.WriteString("\n")
}

func writeValue(b *strings.Builder, key string, value interface{}, depth int) {
	indent := strings.Repeat("  ", depth)
	label := strings.ReplaceAll(key, "_", " ")

	switch v := value.(type) {
	case map[string]interface{}:
		fmt.Fprintf(b, "%s- **%s**:\n", indent, label)
		if depth >= 2 {
			fmt.Fprintf(b, "%s  - %v\n", indent, v)
			return
		}
		for _, k := range sortedKeys(v) {
			writeValue(b, k, v[k], depth+1)
		}
	case []interface{}:
		fmt.Fprintf(b, "%s- **%s**:\n", indent, label)
		for _, item := range v {
			fmt.Fprintf(b, "%s  - %v\n", indent, item)
		}
	default:
		fmt.Fprintf(b, "%s- **%s**: %v\n", indent, label, v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
