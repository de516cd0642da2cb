package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/app"
	"github.com/jamaly87/codebase-qa/internal/logging"
	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

var (
	repoPath   string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a Python repository into the vector store",
	Long: `Chunk every .py file of a repository at function or class boundaries,
embed the chunks that are not stored yet and insert them.

Examples:
  # Ingest a checkout
  ingest --repo-path ./my-service

  # Use an explicit config file
  ingest --repo-path ./my-service --config ./config.yaml`,
	SilenceUsage: true,
	RunE:         runIngest,
}

func init() {
	rootCmd.Flags().StringVar(&repoPath, "repo-path", "", "Path to the repository to ingest")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	_ = rootCmd.MarkFlagRequired("repo-path")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadPath(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(&cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("setup failed", zap.Error(err))
		return err
	}
	defer a.Close(context.Background())

	stats, err := a.Indexer.Ingest(ctx, repoPath)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("repository path %s does not exist", repoPath)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Ingestion complete:")
	fmt.Fprintf(out, "  Files processed: %d\n", stats.FilesProcessed)
	fmt.Fprintf(out, "  Chunks inserted: %d\n", stats.ChunksInserted)
	fmt.Fprintf(out, "  Chunks skipped: %d\n", stats.ChunksSkipped)
	if stats.FilesFailed > 0 {
		fmt.Fprintf(out, "  Files failed: %d\n", stats.FilesFailed)
	}
	return nil
}
