// Package httpapi exposes ingestion and retrieval over a small JSON HTTP API.
//
// Routes:
//
//	GET  /             health message
//	POST /uploadfile/  multipart upload (field "file"), ingests the PDF
//	POST /rag-search   {namespace, query, top_k} -> {query, namespace, answer}
//	GET  /namespaces   namespaces with record counts
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/custodia-labs/pdfrag/internal/core/ports/driving"
	"github.com/custodia-labs/pdfrag/internal/logger"
)

// ErrMissingService is returned when a required driving port is nil.
var ErrMissingService = errors.New("httpapi: ingest and ask services are required")

// Ports aggregates the driving ports the API calls.
type Ports struct {
	Ingest     driving.IngestService
	Ask        driving.AskService
	Namespaces driving.NamespaceService
}

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":4545".
	Addr string

	// AllowedOrigins are the CORS origins. "*" allows any origin.
	AllowedOrigins []string

	// MaxUploadBytes caps the upload request body. Zero means 32 MiB.
	MaxUploadBytes int64

	// StoreName and IndexName appear in the upload status message.
	StoreName string
	IndexName string
}

const defaultMaxUploadBytes = 32 << 20

// Server is the HTTP API server.
type Server struct {
	ports   Ports
	cfg     Config
	handler http.Handler
}

// NewServer builds the router and middleware chain.
func NewServer(ports Ports, cfg Config) (*Server, error) {
	if ports.Ingest == nil || ports.Ask == nil {
		return nil, ErrMissingService
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{ports: ports, cfg: cfg}
	s.handler = s.setupNegroni(s.routes())
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/uploadfile/", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/rag-search", s.handleSearch).Methods(http.MethodPost)
	r.HandleFunc("/namespaces", s.handleNamespaces).Methods(http.MethodGet)
	return r
}

func (s *Server) setupNegroni(r *mux.Router) *negroni.Negroni {
	recovery := negroni.NewRecovery()
	recovery.Logger = errorLog{}
	recovery.PrintStack = false

	access := negroni.NewLogger()
	access.ALogger = accessLog{}

	n := negroni.New()
	n.Use(recovery)
	n.Use(access)
	n.Use(newCORS(s.cfg.AllowedOrigins))
	n.UseHandler(r)
	return n
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("http: listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// accessLog routes negroni's access lines to the verbose logger.
type accessLog struct{}

func (accessLog) Println(v ...any) { logger.Info("%s", fmt.Sprint(v...)) }

func (accessLog) Printf(format string, v ...any) { logger.Info(format, v...) }

// errorLog routes recovered panics to the always-on error level.
type errorLog struct{}

func (errorLog) Println(v ...any) { logger.Error("%s", fmt.Sprint(v...)) }

func (errorLog) Printf(format string, v ...any) { logger.Error(format, v...) }
