package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for pdfrag resources.
	uriScheme = "pdfrag://"

	namespacesURI = uriScheme + "namespaces"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         namespacesURI,
		Name:        "namespaces",
		Description: "Namespaces in the configured index with their record counts",
		MIMEType:    "application/json",
	}, s.handleNamespacesResource)
}

// handleNamespacesResource returns the namespace list as JSON.
func (s *Server) handleNamespacesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	namespaces := []domain.NamespaceInfo{}
	if s.ports.Namespaces != nil {
		listed, err := s.ports.Namespaces.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing namespaces: %w", err)
		}
		namespaces = append(namespaces, listed...)
	}

	data, err := json.MarshalIndent(namespaces, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling namespaces: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
