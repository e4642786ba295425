// Command heats assigns competitors, judges and scramblers to the groups of a
// competition.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/heats/internal/config"
	"github.com/okian/heats/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "heats",
		Short:        "Competition group and staff assignment",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (overrides HEATS_CONFIG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "text or json")

	root.AddCommand(newAssignCmd(flags), newGenCmd(), newEventsCmd())
	return root
}

// load reads the layered config and applies the root flags on top.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context(), config.WithFile(f.configPath))
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	return cfg, nil
}

func initLogger(cmd *cobra.Command, cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	return logger.Init(
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
		logger.WithLevel(level),
	)
}
