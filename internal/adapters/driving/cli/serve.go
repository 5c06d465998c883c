package cli

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbase-labs/kbase/internal/adapters/driving/httpapi"
	"github.com/kbase-labs/kbase/internal/logger"
	"github.com/kbase-labs/kbase/internal/watcher"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API for searching, asking, and managing the
knowledge base.

With --watch, the documents directory is watched and new or modified
supported files are ingested automatically.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "watch the documents directory for changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.ListenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWatch || settings.Watch {
		w, err := watcher.New(watcher.Config{
			Dir:       settings.DocumentsDir,
			Supported: extractorRegistry.Supported,
			OnFile:    ingestWatched,
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn("watcher stopped: %v", err)
			}
		}()
		logger.Info("watching %s", settings.DocumentsDir)
	}

	server := httpapi.NewServer(httpapi.Config{
		Knowledge:    knowledgeService,
		Answers:      answerService,
		Extractors:   extractorRegistry,
		History:      ingestHistory,
		UploadDir:    filepath.Join(settings.DataDir, "uploads"),
		DocumentsDir: settings.DocumentsDir,
		DefaultTopK:  settings.TopK,
	})

	logger.Info("listening on %s", addr)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Run(addr) }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// ingestWatched adds a newly seen file and persists the corpus.
func ingestWatched(ctx context.Context, path string) {
	logger.Info("ingesting %s", path)
	if _, err := knowledgeService.AddDocument(ctx, path); err != nil {
		logger.Warn("ingest %s: %v", path, err)
		return
	}
	if err := knowledgeService.Save(); err != nil {
		logger.Warn("save after ingest: %v", err)
	}
}
