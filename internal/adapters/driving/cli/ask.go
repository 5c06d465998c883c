package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Retrieves the chunks most relevant to the question and asks the
local language model to answer from them. The answer cites the source
files it was grounded on.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "n", 5, "number of chunks to retrieve")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.Ask(cmd.Context(), args[0], askTopK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.AnswerText)
	cmd.Println()
	cmd.Printf("Confidence: %.2f\n", answer.Confidence)

	if len(answer.Sources) > 0 {
		cmd.Println("Sources:")
		seen := make(map[string]struct{}, len(answer.Sources))
		for _, s := range answer.Sources {
			if _, ok := seen[s.FileName]; ok {
				continue
			}
			seen[s.FileName] = struct{}{}
			cmd.Printf("  - %s\n", s.FileName)
		}
	}
	return nil
}
