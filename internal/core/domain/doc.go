// Package domain defines the core business entities for pdfrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PageRecord: The text of one PDF page
//   - Chunk: A bounded substring of page text with source metadata
//   - IndexRecord: A chunk's vector and metadata as stored under a namespace
//   - Match: A ranked similarity search hit
//   - IngestResult / AskRequest / Answer: Pipeline inputs and outputs
//   - AppSettings: The explicit, validated application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
