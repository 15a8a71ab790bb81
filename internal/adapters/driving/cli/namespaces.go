package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var namespacesJSON bool

var namespacesCmd = &cobra.Command{
	Use:     "namespaces",
	Aliases: []string{"ns"},
	Short:   "List ingested namespaces",
	Args:    cobra.NoArgs,
	RunE:    runNamespaces,
}

func init() {
	namespacesCmd.Flags().BoolVar(&namespacesJSON, "json", false, "output namespaces as JSON")
	rootCmd.AddCommand(namespacesCmd)
}

func runNamespaces(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	infos, err := namespaceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}

	if namespacesJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal namespaces: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		cmd.Println("No namespaces found. Ingest a PDF with 'pdfrag ingest <file.pdf>'.")
		return nil
	}

	cmd.Printf("Namespaces (%d):\n\n", len(infos))
	for _, info := range infos {
		cmd.Printf("  %-40s %d chunks\n", info.Name, info.RecordCount)
	}
	return nil
}
