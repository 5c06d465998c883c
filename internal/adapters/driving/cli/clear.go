package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire knowledge base",
	Long: `Removes every document, chunk, and vector, and deletes the persisted
artifacts from the data directory. This cannot be undone.`,
	RunE: runClear,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Clear and re-ingest the documents directory",
	Long: `Clears the knowledge base and re-ingests every supported file under
the configured documents directory. Use this after changing the
embedding model or chunking configuration.`,
	RunE: runRebuild,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(rebuildCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if !clearYes {
		cmd.Print("This deletes the entire knowledge base. Continue? [y/N] ")
		var reply string
		fmt.Fscanln(cmd.InOrStdin(), &reply)
		if reply != "y" && reply != "Y" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := knowledgeService.Clear(); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("Knowledge base cleared.")
	return nil
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if err := knowledgeService.Clear(); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	docs, failures, err := knowledgeService.AddDirectory(cmd.Context(), settings.DocumentsDir, true)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	if err := knowledgeService.Save(); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	for _, f := range failures {
		cmd.Printf("Skipped %s: %s\n", f.FilePath, f.Reason)
	}
	cmd.Printf("Rebuilt: %d documents added, %d failed\n", len(docs), len(failures))
	return nil
}
