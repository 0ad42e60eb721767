package core

import (
	"sort"
	"sync"
)

// =============================================================================
// Parser Registry - Plugin system for parsers
// =============================================================================

// ParserRegistry manages registered parsers.
type ParserRegistry struct {
	parsers map[string]Parser
	order   []string
	mu      sync.RWMutex
}

// NewParserRegistry creates an empty parser registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		parsers: make(map[string]Parser),
	}
}

// Register adds a parser to the registry. Registering a name again replaces
// the parser but keeps its detection priority.
func (r *ParserRegistry) Register(parser Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parsers[parser.Name()]; !exists {
		r.order = append(r.order, parser.Name())
	}
	r.parsers[parser.Name()] = parser
}

// Get returns a parser by name.
func (r *ParserRegistry) Get(name string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[name]
}

// FindParser finds a parser that can handle the given data.
// Parsers are tried in registration order.
func (r *ParserRegistry) FindParser(data []byte) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		if parser := r.parsers[name]; parser.CanParse(data) {
			return parser
		}
	}
	return nil
}

// List returns all registered parser names, sorted.
func (r *ParserRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
