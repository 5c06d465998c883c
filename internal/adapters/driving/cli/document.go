package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	RunE:  runDocuments,
}

var summariseCmd = &cobra.Command{
	Use:   "summarise [path]",
	Short: "Summarise an ingested document",
	Long: `Generates a short summary of an ingested document using the local
language model. The path must match the path the document was ingested
from.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarise,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(summariseCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	docs := knowledgeService.Documents()
	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("  %s (%d chunks, %d words, %d bytes)\n", d.FileName, d.ChunkCount, d.WordCount, d.FileSize)
	}
	cmd.Printf("\n%d documents\n", len(docs))
	return nil
}

func runSummarise(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	summary, err := answerService.Summarise(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("summarise failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}
