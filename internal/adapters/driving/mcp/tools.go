package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

// IngestInput is the input schema for the ingest_pdf tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local PDF file to index"`
}

// IngestOutput is the output schema for the ingest_pdf tool.
type IngestOutput struct {
	Namespace string `json:"namespace"`
	NumPages  int    `json:"num_pages"`
	NumChunks int    `json:"num_chunks"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Namespace string `json:"namespace" jsonschema:"namespace returned when the PDF was ingested"`
	Query     string `json:"query" jsonschema:"question to answer from the document"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Query     string `json:"query"`
	Namespace string `json:"namespace"`
	Answer    string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_pdf",
		Description: "Index a local PDF into a fresh namespace and report page and chunk counts",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the chunks stored in one namespace",
	}, s.handleAsk)
}

// handleIngest handles the ingest_pdf tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, IngestOutput{}, toolError(fmt.Errorf("%w: path is required", domain.ErrInvalidInput))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, IngestOutput{}, toolError(fmt.Errorf("%w: %w", domain.ErrLoad, err))
	}
	defer f.Close()

	result, err := s.ports.Ingest.Ingest(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	return nil, IngestOutput{
		Namespace: result.Namespace,
		NumPages:  result.PageCount,
		NumChunks: result.ChunkCount,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.AskRequest{
		Namespace: input.Namespace,
		Query:     input.Query,
		TopK:      input.TopK,
	})
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	return nil, AskOutput{
		Query:     answer.Query,
		Namespace: answer.Namespace,
		Answer:    answer.Answer,
	}, nil
}

// toolError prefixes err with its kind. The SDK reports handler errors to
// the client as tool results with isError set.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", domain.ErrorKind(err), err)
}
