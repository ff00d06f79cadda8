package classifier

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/lectio/internal/models"
)

// ClassificationRule maps a keyword set to an educational document type.
// Rules are evaluated in order against the lowercased document text and the
// first rule with any matching keyword wins.
type ClassificationRule struct {
	Name     string   `yaml:"name"`
	DocType  string   `yaml:"document_type"`
	Keywords []string `yaml:"keywords"`
}

// builtinRules is the default rule table in priority order. Keyword sets are
// bilingual (English + Traditional Chinese); matching is case-insensitive
// substring search, so English keywords are stored lowercased.
var builtinRules = []ClassificationRule{
	{
		Name:     "syllabus",
		DocType:  string(models.DocTypeSyllabus),
		Keywords: []string{"syllabus", "course outline", "課程大綱", "教學大綱"},
	},
	{
		Name:     "exam",
		DocType:  string(models.DocTypeExam),
		Keywords: []string{"exam", "quiz", "test", "考試", "測驗"},
	},
	{
		Name:     "worksheet",
		DocType:  string(models.DocTypeWorksheet),
		Keywords: []string{"worksheet", "exercise", "練習", "作業"},
	},
	{
		Name:     "lesson-plan",
		DocType:  string(models.DocTypeLessonPlan),
		Keywords: []string{"lesson plan", "teaching plan", "教案", "課程計劃"},
	},
	{
		Name:     "lecture-notes",
		DocType:  string(models.DocTypeLectureNotes),
		Keywords: []string{"lecture", "lecture notes", "講義"},
	},
}

// scoringKeywords distinguish an exam from a worksheet when classification
// falls through to the question-count heuristic.
var scoringKeywords = []string{
	"grade", "score", "points", "grading", "time limit",
	"評分", "成績", "分數", "時間限制",
}

// objectiveKeywords mark the start of a learning-objectives section in a
// syllabus. Checked in order; the first keyword present in the text wins.
var objectiveKeywords = []string{
	"learning objectives",
	"teaching objectives",
	"course objectives",
	"students will be able to",
	"learning outcomes",
	"this course aims to",
	"learning focus",
	"core competencies",
	"學習目標",
	"教學目標",
	"課程目標",
	"學生將能夠",
	"學習成果",
	"本課程旨在",
	"學習重點",
	"核心能力",
}

// questionNumberPatterns identify lines that start a question: arabic
// numerals, Chinese numerals, Roman numerals and explicit "Question N" /
// "第N題" forms. The first capture group is the question number.
var questionNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(\d+)\s*[\.)。、]`),
	regexp.MustCompile(`^\s*([一二三四五六七八九十百]+)\s*[\.)。、]`),
	regexp.MustCompile(`^\s*([IVXLCDM]+)\s*[\.)。]`),
	regexp.MustCompile(`^\s*第\s*(\d+)\s*題`),
	regexp.MustCompile(`(?i)^\s*question\s+#?(\d+)`),
}

// optionPattern matches a labeled choice (A. / A) / A、) anywhere in a line.
// Options may share a line with the question text or each other, so matching
// is positional rather than anchored.
var optionPattern = regexp.MustCompile(`(?:^|\s)([A-D])[\.)、]\s*`)

// optionStartPattern anchors an option marker at the beginning of a line.
var optionStartPattern = regexp.MustCompile(`^([A-D])[\.)、]`)

// listMarkerPattern strips a leading list marker (1. / 一、 / - / •) from an
// extracted objective line.
var listMarkerPattern = regexp.MustCompile(`^\s*(?:\d+|[一二三四五六七八九十]+)?[\.)、•\-*:：]*\s*`)

// LoadRulePack reads additional classification rules from a YAML file. The
// returned rules are prepended to the built-in table, so a pack can override
// built-in classifications. A missing path yields the built-ins unchanged.
func LoadRulePack(path string) ([]ClassificationRule, error) {
	if path == "" {
		return builtinRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var pack struct {
		Rules []ClassificationRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for i, rule := range pack.Rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %d in %s has no name", i, path)
		}
		if _, err := models.ParseEducationalDocumentType(rule.DocType); err != nil {
			return nil, fmt.Errorf("rule %q in %s: %w", rule.Name, path, err)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("rule %q in %s has no keywords", rule.Name, path)
		}
	}

	merged := make([]ClassificationRule, 0, len(pack.Rules)+len(builtinRules))
	merged = append(merged, pack.Rules...)
	merged = append(merged, builtinRules...)
	return merged, nil
}
