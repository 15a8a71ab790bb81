package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Ingest a PDF into a new namespace",
	Long: `Extracts the text of a PDF, splits it into chunks, embeds each chunk and
stores the vectors under a namespace derived from the file name.

The namespace is printed on success; pass it to 'pdfrag ask'.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s is not a .pdf file", domain.ErrInvalidInput, path)
	}

	if err := requireServices(cmd); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}
	defer f.Close()

	result, err := ingestService.Ingest(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested %s\n", result.Filename)
	cmd.Printf("  Namespace: %s\n", result.Namespace)
	cmd.Printf("  Pages:     %d\n", result.PageCount)
	cmd.Printf("  Chunks:    %d\n", result.ChunkCount)
	if result.ArchiveURI != "" {
		cmd.Printf("  Archived:  %s\n", result.ArchiveURI)
	}
	cmd.Println()
	cmd.Printf("Ask with: pdfrag ask %s \"<question>\"\n", result.Namespace)
	return nil
}
