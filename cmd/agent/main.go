package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jamaly87/codebase-qa/internal/app"
	"github.com/jamaly87/codebase-qa/internal/logging"
	"github.com/jamaly87/codebase-qa/internal/tui"
	"github.com/jamaly87/codebase-qa/pkg/config"
)

var (
	configPath string
	plain      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Ask questions about the ingested codebase",
	Long: `Start an interactive session that answers questions about the ingested
Python repository. Type exit or quit to leave.`,
	SilenceUsage: true,
	RunE:         runAgent,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "Use a line-oriented prompt instead of the full-screen shell")
}

func runAgent(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadPath(configPath)
	if err != nil {
		return err
	}

	// the full-screen shell owns the terminal, so logs go to a file
	if !plain && cfg.Logging.File == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Logging.File = filepath.Join(home, ".codebase-qa", "agent.log")
		}
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

	if plain {
		return tui.RunPlain(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.Machine)
	}

	_, err = tea.NewProgram(tui.New(ctx, a.Machine), tea.WithAltScreen()).Run()
	return err
}
