package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent ingestion attempts",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if ingestHistory == nil {
		return errors.New("ingest history not configured")
	}

	records, err := ingestHistory.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No ingestion history.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if !r.Succeeded {
			status = "failed: " + r.Error
		}
		cmd.Printf("  %s  %s  %d chunks  %s  (%s)\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.FilePath, r.ChunkCount, status, r.Duration)
	}
	return nil
}
