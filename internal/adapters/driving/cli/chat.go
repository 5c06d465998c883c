package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat UI",
	Long: `Launch an interactive terminal chat over the knowledge base.

Type a question and press Enter; the answer is rendered with its
confidence and source files.

Controls:
  Enter - Ask
  Esc   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	// Panic recovery keeps the stack trace visible after the alt screen
	// is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if err := tui.Run(answerService, settings.TopK); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
