package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/core/domain"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask <namespace> <query>",
	Short: "Ask a question about an ingested PDF",
	Long: `Retrieves the chunks of a namespace most similar to the query and asks
the configured LLM to answer from them.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to retrieve")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	answer, err := askService.Ask(cmd.Context(), domain.AskRequest{
		Namespace: args[0],
		Query:     args[1],
		TopK:      askTopK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Answer)
	if verbose && len(answer.Matches) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, m := range answer.Matches {
			cmd.Printf("  [%d] page %d (%.3f)\n", i+1, m.Metadata.PageNumber, m.Score)
		}
	}
	return nil
}
