package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfrag/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Chat with your PDFs in the terminal",
	Long: `Launch the interactive terminal chat.

Pick a namespace, then ask questions about that document. Each namespace
keeps its own transcript until you quit.

Controls:
  ↑/k, ↓/j  - Navigate namespaces
  /         - Filter namespaces
  Enter     - Open chat / Ask
  Esc       - Back to namespaces
  ?         - Help
  Ctrl+C    - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panicked: %v", r)
		}
	}()

	if err := requireServices(cmd); err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Ask:        askService,
		Namespaces: namespaceService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
