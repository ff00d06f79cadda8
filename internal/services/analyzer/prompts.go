package analyzer

import (
	"fmt"

	"github.com/ternarybob/lectio/internal/services/classifier"
)

func basicAnalysisPrompt(text, docType string) string {
	return fmt.Sprintf(`Provide a basic analysis of the following %s document.
Focus only on:
1. Main topic or subject
2. Target audience level
3. 3-5 key points

Return as JSON with fields: main_topic, audience_level, key_points

Content:
%s`, docType, classifier.TruncateRunes(text, basicInputLimit))
}

func standardAnalysisPrompt(text, docType string) string {
	return fmt.Sprintf(`Analyze the following %s document in standard depth.
Focus on:
1. Comprehensive subject matter identification
2. Educational value assessment
3. Knowledge points and learning objectives
4. Teaching/learning recommendations
5. Content quality evaluation

Return as JSON with fields: subject_matter, educational_value, knowledge_points, recommendations, content_quality_score (1-5)

Content:
%s`, docType, classifier.TruncateRunes(text, standardInputLimit))
}

func deepAnalysisPrompt(text, docType string) string {
	return fmt.Sprintf(`Perform deep analysis on the following %s document.
Include:
1. Detailed subject matter mapping
2. Pedagogical approach assessment
3. Bloom's taxonomy classification of content
4. Detailed strengths and weaknesses
5. Enhancement suggestions with specific examples
6. Academic standards alignment
7. Alternative approaches or perspectives

Return as JSON with appropriate fields for each section above.

Content:
%s`, docType, classifier.TruncateRunes(text, deepInputLimit))
}

func relationshipPrompt(text string) string {
	return fmt.Sprintf(`Analyze the relationships between key concepts in the document.
Create a knowledge graph structure showing:
1. Main concepts
2. Relationships between concepts (prerequisite, related, builds-upon)
3. Conceptual hierarchy or dependency

Return as JSON with fields: nodes (concepts), edges (relationships)

Content:
%s`, classifier.TruncateRunes(text, relationshipInputLimit))
}
