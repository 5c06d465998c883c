package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	stats := knowledgeService.Stats()
	cmd.Printf("Documents:  %d\n", stats.TotalDocuments)
	cmd.Printf("Files:      %d\n", stats.UniqueFiles)
	cmd.Printf("Vectors:    %d\n", stats.TotalVectors)
	cmd.Printf("Model:      %s\n", stats.ModelName)
	cmd.Printf("Dimensions: %d\n", stats.Dimension)
	return nil
}
