// Package tui provides the interactive chat interface for pdfrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Ask answers questions from a namespace.
	Ask driving.AskService

	// Namespaces lists the namespaces to chat with.
	Namespaces driving.NamespaceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Namespaces == nil {
		return ErrMissingNamespaceService
	}
	return nil
}
