// Package cli wires the kbase commands. Services are injected by the
// main package before Execute runs; commands guard against missing
// services so partial wiring fails loudly instead of panicking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase/internal/adapters/driven/config/file"
	"github.com/kbase-labs/kbase/internal/core/ports/driven"
	"github.com/kbase-labs/kbase/internal/core/ports/driving"
	"github.com/kbase-labs/kbase/internal/extractors"
	"github.com/kbase-labs/kbase/internal/logger"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

var verbose bool

var (
	knowledgeService  driving.KnowledgeService
	answerService     driving.AnswerService
	ingestHistory     driven.IngestHistory
	extractorRegistry *extractors.Registry
	settings          file.Settings
)

// Services bundles everything the commands need.
type Services struct {
	Knowledge  driving.KnowledgeService
	Answers    driving.AnswerService
	History    driven.IngestHistory
	Extractors *extractors.Registry
	Settings   file.Settings
}

// SetServices injects the wired services into the command tree.
func SetServices(s Services) {
	knowledgeService = s.Knowledge
	answerService = s.Answers
	ingestHistory = s.History
	extractorRegistry = s.Extractors
	settings = s.Settings
}

var rootCmd = &cobra.Command{
	Use:   "kbase",
	Short: "Local knowledge base with retrieval-augmented answers",
	Long: `kbase ingests local documents into a searchable knowledge base and
answers questions about them using a local Ollama instance.

Documents are extracted, chunked, embedded, and stored in a flat vector
index on disk. Questions are answered by retrieving the most similar
chunks and passing them as context to a local language model.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
