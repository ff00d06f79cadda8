package parser

import (
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// Registry maps normalized MIME types to document parsers. It is constructed
// explicitly at startup and injected into the parsing service. Registration
// order matters: a parser registered later for a MIME type replaces any
// earlier registration for that type.
type Registry struct {
	logger  arbor.ILogger
	parsers map[string]interfaces.DocumentParser
}

// NewRegistry creates an empty parser registry.
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		logger:  logger,
		parsers: make(map[string]interfaces.DocumentParser),
	}
}

// Register binds a parser to every MIME type it reports. Later registrations
// for the same MIME type win.
func (r *Registry) Register(p interfaces.DocumentParser) {
	if p == nil {
		return
	}
	for _, mimetype := range p.SupportedMimetypes() {
		key := strings.ToLower(strings.TrimSpace(mimetype))
		if key == "" {
			continue
		}
		if _, exists := r.parsers[key]; exists && r.logger != nil {
			r.logger.Debug().Str("mimetype", key).Msg("Replacing registered parser")
		}
		r.parsers[key] = p
	}
}

// GetParser returns the parser registered for the given MIME type.
func (r *Registry) GetParser(mimetype string) (interfaces.DocumentParser, bool) {
	p, ok := r.parsers[strings.ToLower(strings.TrimSpace(mimetype))]
	return p, ok
}

// SupportedTypes returns every registered MIME type in sorted order.
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.parsers))
	for mimetype := range r.parsers {
		types = append(types, mimetype)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered MIME types.
func (r *Registry) Count() int {
	return len(r.parsers)
}
