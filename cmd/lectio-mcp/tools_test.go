package main

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/lectio/internal/models"
)

func propertyDescription(t *testing.T, tool mcp.Tool, name string) string {
	t.Helper()
	prop, ok := tool.InputSchema.Properties[name].(map[string]any)
	require.True(t, ok, "missing property %q", name)
	desc, _ := prop["description"].(string)
	return desc
}

func TestListDocumentsFilterNamesRealTypes(t *testing.T) {
	desc := propertyDescription(t, createListDocumentsTool(), "document_type")

	_, listed, found := strings.Cut(desc, "Filter: ")
	require.True(t, found, desc)

	// Every advertised filter value must round-trip through the enum.
	for _, name := range strings.Split(listed, ",") {
		value := strings.TrimSpace(name)
		_, err := models.ParseEducationalDocumentType(value)
		assert.NoError(t, err, value)
	}
}

func TestAnalyzeTextDepthNamesRealDepths(t *testing.T) {
	desc := propertyDescription(t, createAnalyzeTextTool(), "depth")

	for _, depth := range []models.AnalysisDepth{models.DepthBasic, models.DepthStandard, models.DepthDeep} {
		assert.Contains(t, desc, string(depth))
	}
}
