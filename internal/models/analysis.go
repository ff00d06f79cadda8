package models

import "fmt"

// AnalysisDepth controls how much detail the AI analysis stage produces.
type AnalysisDepth string

const (
	// DepthBasic covers the main topic, audience level and a few key points.
	DepthBasic AnalysisDepth = "basic"
	// DepthStandard adds subject matter, educational value, knowledge points
	// and recommendations.
	DepthStandard AnalysisDepth = "standard"
	// DepthDeep adds pedagogical assessment, Bloom's taxonomy classification
	// and a concept relationship map.
	DepthDeep AnalysisDepth = "deep"
)

// ParseAnalysisDepth validates a depth string received from a caller.
func ParseAnalysisDepth(s string) (AnalysisDepth, error) {
	switch AnalysisDepth(s) {
	case DepthBasic, DepthStandard, DepthDeep:
		return AnalysisDepth(s), nil
	default:
		return "", fmt.Errorf("analysis depth must be 'basic', 'standard', or 'deep'")
	}
}

// AnalysisResult is the combined output of the AI document analyzer:
// heuristic classification merged with depth-specific AI insights.
type AnalysisResult struct {
	DocumentType         string                 `json:"document_type"`
	Structure            map[string]interface{} `json:"structure"`
	EducationalElements  map[string]interface{} `json:"educational_elements"`
	AIInsights           map[string]interface{} `json:"ai_insights"`
	ContentRelationships map[string]interface{} `json:"content_relationships,omitempty"`
	Errors               []string               `json:"errors,omitempty"`
}

// ToMap converts the analysis result to the plain mapping surfaced to the
// HTTP layer. Optional keys appear only when populated.
func (r *AnalysisResult) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"document_type":        r.DocumentType,
		"structure":            r.Structure,
		"educational_elements": r.EducationalElements,
		"ai_insights":          r.AIInsights,
	}

	if r.ContentRelationships != nil {
		result["content_relationships"] = r.ContentRelationships
	}
	if len(r.Errors) > 0 {
		result["errors"] = r.Errors
	}

	return result
}

// HasError reports whether the depth-specific AI call itself failed.
// A failed sub-call stores its message under an "error" key in ai_insights.
func (r *AnalysisResult) HasError() bool {
	if r.AIInsights == nil {
		return false
	}
	_, ok := r.AIInsights["error"]
	return ok
}

// ErrorMessage returns the ai_insights error string, empty when none.
func (r *AnalysisResult) ErrorMessage() string {
	if r.AIInsights == nil {
		return ""
	}
	if msg, ok := r.AIInsights["error"].(string); ok {
		return msg
	}
	return ""
}
