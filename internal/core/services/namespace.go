package services

import (
	"strings"

	"github.com/custodia-labs/pdfrag/internal/core/ports/driven"
)

// DefaultNamespaceWords is how many filename words prefix a namespace.
const DefaultNamespaceWords = 3

// NamespaceGenerator derives a partition name from an upload's filename
// and the time of day, e.g. "quarterly-report-2024-142530".
type NamespaceGenerator struct {
	clock driven.Clock
	words int
}

// NewNamespaceGenerator creates a generator. A nil clock uses the system
// clock and a non-positive word count uses DefaultNamespaceWords.
func NewNamespaceGenerator(clock driven.Clock, words int) *NamespaceGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	if words <= 0 {
		words = DefaultNamespaceWords
	}
	return &NamespaceGenerator{clock: clock, words: words}
}

// Generate returns the namespace for filename. It never fails; the result
// contains only [a-z0-9-].
func (g *NamespaceGenerator) Generate(filename string) string {
	stem := stripExtension(filename)
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)

	words := strings.Fields(stem)
	if len(words) > g.words {
		words = words[:g.words]
	}
	prefix := "file"
	if len(words) > 0 {
		prefix = strings.Join(words, "-")
	}

	return sanitizeNamespace(prefix + "-" + g.clock.Now().Format("150405"))
}

// WithSuffix appends suffix to namespace and re-sanitizes the result.
func (g *NamespaceGenerator) WithSuffix(namespace, suffix string) string {
	return sanitizeNamespace(namespace + "-" + suffix)
}

// stripExtension removes the final extension. Leading dots of the last path
// element are not an extension, so ".env" stays ".env".
func stripExtension(name string) string {
	slash := strings.LastIndexAny(name, `/\`)
	dot := strings.LastIndexByte(name, '.')
	if dot <= slash {
		return name
	}
	for i := slash + 1; i < dot; i++ {
		if name[i] != '.' {
			return name[:dot]
		}
	}
	return name
}

// sanitizeNamespace maps every rune outside [A-Za-z0-9-] to '-' and lowercases.
func sanitizeNamespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
