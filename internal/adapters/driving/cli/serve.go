package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by web front ends.

Routes:
  GET  /             health check
  POST /uploadfile/  multipart upload of a PDF in the "file" field
  POST /rag-search   {"namespace", "query", "top_k"} -> answer
  GET  /namespaces   list namespaces

Allowed CORS origins come from server.allowed_origins in config.toml.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, :4545)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	settings := currentSettings()
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Ingest:     ingestService,
		Ask:        askService,
		Namespaces: namespaceService,
	}, httpapi.Config{
		Addr:           addr,
		AllowedOrigins: settings.Server.AllowedOrigins,
		MaxUploadBytes: settings.Ingest.MaxUploadBytes,
		StoreName:      string(settings.VectorStore.Provider),
		IndexName:      settings.VectorStore.IndexName,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(cmd.Context())
}
