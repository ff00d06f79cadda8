// -----------------------------------------------------------------------
// Prompt Library - versioned prompt templates with variable substitution
// -----------------------------------------------------------------------

package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Roles for chat-based AI systems.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged message in a multi-message prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Template is a named, versioned prompt with {variable} placeholders.
type Template struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Messages    []Message `json:"messages"`
}

// variablePattern matches {variable} placeholders in template content.
var variablePattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Variables returns the distinct placeholder names used across the
// template's messages.
func (t *Template) Variables() []string {
	seen := map[string]bool{}
	var names []string
	for _, msg := range t.Messages {
		for _, m := range variablePattern.FindAllStringSubmatch(msg.Content, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	sort.Strings(names)
	return names
}

// Render substitutes variables into the template messages. Every
// placeholder must have a value; missing variables are an error.
func (t *Template) Render(vars map[string]string) ([]Message, error) {
	var missing []string
	for _, name := range t.Variables() {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required variables: %s", strings.Join(missing, ", "))
	}

	rendered := make([]Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		content := variablePattern.ReplaceAllStringFunc(msg.Content, func(placeholder string) string {
			name := placeholder[1 : len(placeholder)-1]
			return vars[name]
		})
		rendered = append(rendered, Message{Role: msg.Role, Content: content})
	}
	return rendered, nil
}

// RenderSingle renders the template and joins all messages into one prompt
// string with role indicators, for completion-style AI interfaces.
func (t *Template) RenderSingle(vars map[string]string) (string, error) {
	messages, err := t.Render(vars)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			parts = append(parts, "[System]: "+msg.Content)
		case RoleAssistant:
			parts = append(parts, "[Assistant]: "+msg.Content)
		default:
			parts = append(parts, "[User]: "+msg.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// Library is a collection of prompt templates keyed by name and version.
// Lookups without a version resolve to the highest registered version.
type Library struct {
	mu        sync.RWMutex
	templates map[string]*Template // name_vVERSION -> template
}

// NewLibrary creates a library pre-loaded with the default templates.
func NewLibrary() *Library {
	lib := &Library{
		templates: make(map[string]*Template),
	}
	for _, t := range defaultTemplates() {
		lib.Add(t)
	}
	return lib
}

// Add registers a template under its name and version. Re-adding the same
// name and version replaces the earlier registration.
func (l *Library) Add(t *Template) {
	if t.Version == "" {
		t.Version = "1.0"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[fmt.Sprintf("%s_v%s", t.Name, t.Version)] = t
}

// Get returns a template by name; version may be empty for the latest.
func (l *Library) Get(name, version string) (*Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if version != "" {
		t, ok := l.templates[fmt.Sprintf("%s_v%s", name, version)]
		if !ok {
			return nil, fmt.Errorf("template '%s' with version '%s' not found", name, version)
		}
		return t, nil
	}

	var latest *Template
	for key, t := range l.templates {
		if !strings.HasPrefix(key, name+"_v") {
			continue
		}
		if latest == nil || t.Version > latest.Version {
			latest = t
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no template named '%s' found", name)
	}
	return latest, nil
}

// RenderSingle is a convenience wrapper: look up the latest version of a
// template and render it as one prompt string.
func (l *Library) RenderSingle(name string, vars map[string]string) (string, error) {
	t, err := l.Get(name, "")
	if err != nil {
		return "", err
	}
	return t.RenderSingle(vars)
}

// List returns name, version and description for every registered template.
func (l *Library) List() []map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]map[string]string, 0, len(l.templates))
	for _, t := range l.templates {
		entries = append(entries, map[string]string{
			"name":        t.Name,
			"version":     t.Version,
			"description": t.Description,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i]["name"] != entries[j]["name"] {
			return entries[i]["name"] < entries[j]["name"]
		}
		return entries[i]["version"] < entries[j]["version"]
	})
	return entries
}

// defaultTemplates builds the built-in template set.
func defaultTemplates() []*Template {
	return []*Template{
		{
			Name:        "document_analysis",
			Description: "Analyze document content and extract key information",
			Version:     "1.0",
			Messages: []Message{
				{
					Role: RoleSystem,
					Content: "You are an expert teaching assistant specialized in analyzing educational materials. " +
						"Extract key information from the following {document_type} document. " +
						"Focus on main topics, key concepts, difficulty level, and suggested learning outcomes.",
				},
				{Role: RoleUser, Content: "Document content: {content}"},
			},
		},
		{
			Name:        "image_analysis",
			Description: "Analyze image content for educational relevance",
			Version:     "1.0",
			Messages: []Message{
				{
					Role: RoleSystem,
					Content: "You are a teaching assistant with expertise in visual content analysis. " +
						"Analyze the described image and identify educational concepts, topics, " +
						"and potential teaching applications.",
				},
				{Role: RoleUser, Content: "Image description: {image_description}"},
			},
		},
		{
			Name:        "question_generation",
			Description: "Generate educational questions based on content",
			Version:     "1.0",
			Messages: []Message{
				{
					Role: RoleSystem,
					Content: "You are an assessment specialist who creates high-quality educational questions. " +
						"Generate {question_count} {question_type} questions about {topic} at {difficulty_level} level. " +
						"Each question should test understanding of key concepts and include correct answers. " +
						"Return the questions as a JSON object with a 'questions' list.",
				},
				{Role: RoleUser, Content: "Content for question generation: {content}"},
			},
		},
	}
}
