package domain

import "fmt"

// ChunkSource is the source tag stamped on every chunk metadata.
const ChunkSource = "AI Embedding"

// PageRecord is the text of one PDF page as produced by a loader.
// Pages are ordered; PageNumber is zero-based.
type PageRecord struct {
	// Text is the extracted page text. Normalisation rewrites it in place.
	Text string

	// PageNumber is the zero-based page index within the document.
	PageNumber int
}

// Validate reports whether the page can be chunked.
func (p PageRecord) Validate() error {
	if p.PageNumber < 0 {
		return fmt.Errorf("%w: page number %d is negative", ErrInvalidInput, p.PageNumber)
	}
	return nil
}

// DisplayNumber returns the one-based page number used in chunk metadata.
func (p PageRecord) DisplayNumber() int {
	return p.PageNumber + 1
}

// ChunkMetadata is attached to each chunk and stored alongside its vector.
type ChunkMetadata struct {
	// Source identifies where the chunk came from. Always ChunkSource.
	Source string `json:"source"`

	// PageNumber is the one-based page the chunk was cut from.
	PageNumber int `json:"page_number"`
}

// Chunk is a bounded-length substring of page text.
// Chunks only live for the duration of one ingestion call.
type Chunk struct {
	// ID is the unique identifier for the chunk. It becomes the record ID.
	ID string

	// Text is the chunk content.
	Text string

	// Position is the chunk's ordinal within its page as produced by the
	// chunker. Ingestion renumbers chunks across the whole document.
	Position int

	// Metadata carries source and page information.
	Metadata ChunkMetadata
}
