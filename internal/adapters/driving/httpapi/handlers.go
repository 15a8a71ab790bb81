package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

type uploadResponse struct {
	Success   bool   `json:"success"`
	Filename  string `json:"filename"`
	Namespace string `json:"namespace"`
	NumPages  int    `json:"num_pages"`
	NumChunks int    `json:"num_chunks"`
	Status    string `json:"status"`
}

type searchResponse struct {
	Query     string `json:"query"`
	Namespace string `json:"namespace"`
	Answer    string `json:"answer"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pdfrag is running"})
}

// handleUpload streams the "file" part straight into the ingest service.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, fmt.Errorf("%w: expected multipart/form-data: %w", domain.ErrInvalidInput, err))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, fmt.Errorf("%w: missing form field \"file\"", domain.ErrInvalidInput))
			return
		}
		if err != nil {
			writeError(w, fmt.Errorf("%w: reading upload: %w", domain.ErrInvalidInput, err))
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		filename := filepath.Base(part.FileName())
		if part.FileName() == "" {
			filename = "upload.pdf"
		}
		result, err := s.ports.Ingest.Ingest(r.Context(), filename, part)
		part.Close()
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, uploadResponse{
			Success:   true,
			Filename:  result.Filename,
			Namespace: result.Namespace,
			NumPages:  result.PageCount,
			NumChunks: result.ChunkCount,
			Status: fmt.Sprintf("Inserted into %s index '%s' under namespace '%s'",
				s.cfg.StoreName, result.Index, result.Namespace),
		})
		return
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid JSON body: %w", domain.ErrInvalidInput, err))
		return
	}

	answer, err := s.ports.Ask.Ask(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:     answer.Query,
		Namespace: answer.Namespace,
		Answer:    answer.Answer,
	})
}

func (s *Server) handleNamespaces(w http.ResponseWriter, r *http.Request) {
	namespaces := []domain.NamespaceInfo{}
	if s.ports.Namespaces != nil {
		listed, err := s.ports.Namespaces.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		namespaces = append(namespaces, listed...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"namespaces": namespaces})
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch domain.ErrorKind(err) {
	case domain.KindInput:
		return http.StatusBadRequest
	case domain.KindLoad:
		return http.StatusUnprocessableEntity
	case domain.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("http: %v", err)
	} else {
		logger.Warn("http: %v", err)
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("http: writing response: %v", err)
	}
}
