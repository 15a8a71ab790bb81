package domain

import (
	"fmt"
	"strings"
)

// DefaultTopK is the number of matches retrieved when a request does not say.
const DefaultTopK = 5

// IngestResult reports the outcome of a successful ingestion.
type IngestResult struct {
	// Filename is the uploaded file name as given by the caller.
	Filename string `json:"filename"`

	// Namespace is the partition all chunks were written to.
	Namespace string `json:"namespace"`

	// Index is the name of the index written to.
	Index string `json:"index"`

	// PageCount is the number of pages loaded.
	PageCount int `json:"num_pages"`

	// ChunkCount is the number of chunks embedded and stored.
	ChunkCount int `json:"num_chunks"`

	// ArchiveURI locates the archived original, if archiving is enabled.
	ArchiveURI string `json:"archive_uri,omitempty"`
}

// AskRequest is a retrieval request against one namespace.
type AskRequest struct {
	// Namespace selects the partition to search.
	Namespace string `json:"namespace"`

	// Query is the natural-language question.
	Query string `json:"query"`

	// TopK is the number of matches to retrieve. Zero or less means DefaultTopK.
	TopK int `json:"top_k"`
}

// Normalise fills defaults and validates the request.
func (r AskRequest) Normalise() (AskRequest, error) {
	r.Namespace = strings.TrimSpace(r.Namespace)
	if r.Namespace == "" {
		return r, fmt.Errorf("%w: namespace is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Query) == "" {
		return r, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	return r, nil
}

// Answer is the result of the retrieval/answer pipeline.
type Answer struct {
	// Query echoes the question asked.
	Query string `json:"query"`

	// Namespace echoes the partition searched.
	Namespace string `json:"namespace"`

	// Answer is the generated text.
	Answer string `json:"answer"`

	// Matches are the retrieved records in ranked order.
	Matches []Match `json:"-"`
}

// BuildContext joins match texts in ranked order, one per line.
// A match without text contributes an empty line.
func BuildContext(matches []Match) string {
	texts := make([]string, len(matches))
	for i := range matches {
		texts[i] = matches[i].Metadata.Text
	}
	return strings.Join(texts, "\n")
}

// DefaultAnswerTemplate is the built-in answer prompt.
const DefaultAnswerTemplate = "Answer the question based only on the following context:\n{context}\n\nQuestion: {query}"

// RenderAnswerPrompt fills the {context} and {query} placeholders of template.
// Substitution is single-pass, so placeholder text inside the values is left alone.
func RenderAnswerPrompt(template, context, query string) string {
	return strings.NewReplacer("{context}", context, "{query}", query).Replace(template)
}
