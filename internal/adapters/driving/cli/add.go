package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var addRecursive bool

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Ingest a file or directory into the knowledge base",
	Long: `Ingests a document into the knowledge base: the text is extracted,
split into overlapping chunks, embedded, and added to the vector index.

When path is a directory, every supported file in it is ingested.
Individual failures are reported but do not abort the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recurse into subdirectories")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return addDirectory(cmd, path)
	}
	return addFile(cmd, path)
}

func addFile(cmd *cobra.Command, path string) error {
	doc, err := knowledgeService.AddDocument(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}
	if err := knowledgeService.Save(); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	cmd.Printf("Added %s (%d chunks, %d words)\n", doc.FileName, doc.ChunkCount, doc.WordCount)
	return nil
}

func addDirectory(cmd *cobra.Command, dir string) error {
	docs, failures, err := knowledgeService.AddDirectory(cmd.Context(), dir, addRecursive)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}
	if len(docs) > 0 {
		if err := knowledgeService.Save(); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
	}

	for _, doc := range docs {
		cmd.Printf("Added %s (%d chunks)\n", doc.FileName, doc.ChunkCount)
	}
	for _, f := range failures {
		cmd.Printf("Skipped %s: %s\n", f.FilePath, f.Reason)
	}
	cmd.Printf("\n%d added, %d failed\n", len(docs), len(failures))
	return nil
}
