package mcp

import (
	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
)

// Ports are the services the MCP server drives. Namespaces is optional;
// without it the namespaces resource is an empty list.
type Ports struct {
	Ingest     driving.IngestService
	Ask        driving.AskService
	Namespaces driving.NamespaceService
}

// Validate reports the first missing required service.
func (p *Ports) Validate() error {
	switch {
	case p == nil || p.Ingest == nil:
		return ErrMissingIngestService
	case p.Ask == nil:
		return ErrMissingAskService
	}
	return nil
}
