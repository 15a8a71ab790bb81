package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest PDFs dropped into a directory",
	Long: `Watches a directory and ingests every PDF created or copied into it.
Each file gets its own namespace, printed as it is ingested.

Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce,
		"quiet period before a changed file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	w := watcher.New(args[0], ingestService, cmd.OutOrStdout())
	w.SetDebounce(watchDebounce)

	cmd.Printf("Watching %s for PDFs (Ctrl-C to stop)\n", args[0])
	return w.Run(cmd.Context())
}
