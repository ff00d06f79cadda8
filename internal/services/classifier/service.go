// -----------------------------------------------------------------------
// Educational Content Classifier - heuristic document-type classification
// and type-specific element extraction
// -----------------------------------------------------------------------

package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
	"github.com/ternarybob/lectio/internal/models"
)

// questionCountThreshold is the number of question-numbered lines that marks
// a document as a worksheet or exam when no keyword rule matched.
const questionCountThreshold = 3

// aiInputLimit caps the text sent to the AI enhancement prompt.
const aiInputLimit = 4000

// Service classifies parsed documents into educational document types using
// an ordered keyword rule table, extracts type-specific elements and
// optionally enhances the result through an AI capability. The AI service is
// an optional collaborator; when absent the heuristics still run to
// completion.
type Service struct {
	rules  []ClassificationRule
	ai     interfaces.AIService
	logger arbor.ILogger
}

var _ interfaces.ClassifierService = (*Service)(nil)

// NewService creates a classifier with the built-in rule table, optionally
// extended by a YAML rule pack. aiService may be nil.
func NewService(rulesFile string, aiService interfaces.AIService, logger arbor.ILogger) (*Service, error) {
	rules, err := LoadRulePack(rulesFile)
	if err != nil {
		return nil, err
	}

	if rulesFile != "" {
		logger.Info().
			Str("rules_file", rulesFile).
			Int("rule_count", len(rules)).
			Msg("Loaded classification rule pack")
	}

	return &Service{
		rules:  rules,
		ai:     aiService,
		logger: logger,
	}, nil
}

// Analyze classifies the parsing result and extracts educational elements.
// The heuristic portion never fails; AI enhancement failures are recorded
// under AIAnalysisError without disturbing the rest of the result.
func (s *Service) Analyze(ctx context.Context, parsingResult *models.ParsingResult) *models.Classification {
	result := models.NewClassification()

	docType := s.identifyDocumentType(parsingResult)
	result.DocumentType = docType

	switch docType {
	case models.DocTypeWorksheet, models.DocTypeExam:
		questions := ExtractQuestions(parsingResult.Text)
		result.EducationalElements["questions"] = questions
	case models.DocTypeSyllabus:
		result.EducationalElements["objectives"] = ExtractLearningObjectives(parsingResult.Text)
	}

	if s.ai != nil {
		enhanced, err := s.enhanceWithAI(ctx, parsingResult, docType)
		if err != nil {
			s.logger.Error().Err(err).Msg("AI enhanced analysis failed")
			result.AIAnalysisError = err.Error()
		} else {
			result.AIEnhancedAnalysis = enhanced
		}
	}

	return result
}

// Classify returns the heuristic document type without AI enhancement.
func (s *Service) Classify(parsingResult *models.ParsingResult) models.EducationalDocumentType {
	return s.identifyDocumentType(parsingResult)
}

// identifyDocumentType walks the rule table in order over the lowercased
// text; the first rule with a matching keyword wins. When no rule matches,
// a document with three or more question-numbered lines is treated as an
// exam (scoring keywords present) or worksheet.
func (s *Service) identifyDocumentType(parsingResult *models.ParsingResult) models.EducationalDocumentType {
	text := strings.ToLower(parsingResult.Text)

	for _, rule := range s.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				s.logger.Debug().
					Str("rule", rule.Name).
					Str("keyword", keyword).
					Msg("Classification rule matched")
				return models.EducationalDocumentType(rule.DocType)
			}
		}
	}

	if containsMultipleQuestions(text) {
		for _, keyword := range scoringKeywords {
			if strings.Contains(text, keyword) {
				return models.DocTypeExam
			}
		}
		return models.DocTypeWorksheet
	}

	return models.DocTypeUnknown
}

// containsMultipleQuestions reports whether at least questionCountThreshold
// lines start with a question-number pattern.
func containsMultipleQuestions(text string) bool {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if _, _, ok := matchQuestionNumber(line); ok {
			count++
			if count >= questionCountThreshold {
				return true
			}
		}
	}
	return false
}

// matchQuestionNumber checks a line against the question-number patterns and
// returns the question number and the remainder of the line after the marker.
func matchQuestionNumber(line string) (number string, rest string, ok bool) {
	for _, pattern := range questionNumberPatterns {
		loc := pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		return line[loc[2]:loc[3]], strings.TrimSpace(line[loc[1]:]), true
	}
	return "", "", false
}

// ExtractQuestions scans the text line by line building question records.
// A question-number match closes the current question and starts a new one;
// option markers (A. / A) / A、) attach labeled options, inline or on their
// own lines; any other non-blank line extends the current question text.
// Extraction is deterministic: the same text always yields the same records.
func ExtractQuestions(text string) []*models.Question {
	questions := []*models.Question{}
	var current *models.Question

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		// Option lines are claimed before the question-number patterns run:
		// "C." and "D." would otherwise read as Roman numerals.
		if current != nil && optionStartPattern.MatchString(trimmed) {
			lead, options := splitOptions(trimmed)
			if lead != "" {
				current.Text = joinQuestionText(current.Text, lead)
			}
			current.Options = append(current.Options, options...)
			continue
		}

		if number, rest, ok := matchQuestionNumber(line); ok {
			if current != nil {
				questions = append(questions, current)
			}
			lead, options := splitOptions(rest)
			current = models.NewQuestion(number, lead)
			current.Options = append(current.Options, options...)
			continue
		}

		if current == nil || trimmed == "" {
			continue
		}

		if lead, options := splitOptions(trimmed); len(options) > 0 {
			if lead != "" {
				current.Text = joinQuestionText(current.Text, lead)
			}
			current.Options = append(current.Options, options...)
			continue
		}

		current.Text = joinQuestionText(current.Text, trimmed)
	}

	if current != nil {
		questions = append(questions, current)
	}

	return questions
}

// splitOptions separates option markers from a line fragment. The text
// before the first marker is returned as lead; each marker and its trailing
// text become one option.
func splitOptions(s string) (lead string, options []models.QuestionOption) {
	matches := optionPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	lead = strings.TrimSpace(s[:matches[0][0]])
	for i, m := range matches {
		end := len(s)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		options = append(options, models.QuestionOption{
			Label: s[m[2]:m[3]],
			Text:  strings.TrimSpace(s[m[1]:end]),
		})
	}
	return lead, options
}

func joinQuestionText(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
}

// ExtractLearningObjectives locates the learning-objectives section of a
// syllabus and splits it into individual objective strings. The section runs
// from just after the first objective keyword present in the text to the
// next blank-line boundary or end of text; list markers are stripped from
// each line.
func ExtractLearningObjectives(text string) []string {
	objectives := []string{}

	for _, keyword := range objectiveKeywords {
		idx := indexFold(text, keyword)
		if idx < 0 {
			continue
		}

		start := idx + len(keyword)
		end := strings.Index(text[start:], "\n\n")
		if end == -1 {
			end = len(text)
		} else {
			end += start
		}

		for _, line := range strings.Split(text[start:end], "\n") {
			item := strings.TrimSpace(listMarkerPattern.ReplaceAllString(line, ""))
			if item != "" {
				objectives = append(objectives, item)
			}
		}
		break
	}

	return objectives
}

// indexFold is a case-insensitive strings.Index. Chinese keywords are
// unaffected; English keywords match regardless of document casing.
func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

// enhanceWithAI runs the document-type-specific enhancement prompt and
// decodes the response. Non-JSON responses are wrapped under raw_response
// rather than treated as failures.
func (s *Service) enhanceWithAI(ctx context.Context, parsingResult *models.ParsingResult, docType models.EducationalDocumentType) (map[string]interface{}, error) {
	var prompt string
	switch docType {
	case models.DocTypeSyllabus:
		prompt = syllabusAnalysisPrompt(parsingResult.Text)
	case models.DocTypeWorksheet:
		prompt = worksheetAnalysisPrompt(parsingResult.Text)
	case models.DocTypeExam:
		prompt = examAnalysisPrompt(parsingResult.Text)
	default:
		prompt = generalAnalysisPrompt(parsingResult.Text)
	}

	response, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return DecodeOrWrap(response), nil
}

// DecodeOrWrap decodes an AI response as a JSON object, falling back to a
// raw_response wrapper for any non-JSON text. Markdown code fences around
// the JSON body are tolerated.
func DecodeOrWrap(response string) map[string]interface{} {
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &decoded); err != nil {
		return map[string]interface{}{"raw_response": response}
	}
	return decoded
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// TruncateRunes caps a string at limit runes without splitting a character.
func TruncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
