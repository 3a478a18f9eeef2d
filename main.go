package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"threef/internal/config"
	"threef/internal/logging"
	"threef/internal/ui"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "threef",
		Short:         "Reflect on a moment as Form, Function and Feeling",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.threef/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(polishCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(configCmd())
	return rootCmd
}

// setup loads the config named by --config and opens the log file it
// points at.
func setup() (*config.Config, string, *zap.Logger, error) {
	path, err := config.Resolve(configPath)
	if err != nil {
		return nil, "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", nil, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(cfg.LogPath(), level)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, path, log, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, path, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("starting", zap.String("config", path), zap.Bool("credential", cfg.HasCredential()))

	model := ui.New(ui.Options{Config: cfg, ConfigPath: path, Log: log})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	w, err := config.Watch(ctx, path, log.Named("config"), func(c *config.Config) {
		p.Send(ui.ConfigMsg{Config: c})
	})
	if err != nil {
		log.Warn("config reload disabled", zap.Error(err))
	} else {
		defer w.Close()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
