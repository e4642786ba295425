package main

import (
	"fmt"
	"io"
	"os"

	service "github.com/okian/heats/internal/app"
	"github.com/okian/heats/internal/adapters/report"
	"github.com/okian/heats/internal/config"
	"github.com/okian/heats/internal/domain/wcif"
	"github.com/okian/heats/pkg/logger"
	"github.com/okian/heats/pkg/metrics"
	"github.com/spf13/cobra"
)

type assignFlags struct {
	wcifPath      string
	settingsPath  string
	settingsText  string
	format        string
	output        string
	metricsPath   string
	stageCapacity int
	fastFactor    float64
}

func newAssignCmd(root *rootFlags) *cobra.Command {
	f := &assignFlags{}
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Fill every group of a WCIF competition",
		Long: "Reads a WCIF document, derives competing, judging and scrambling groups " +
			"for every first round and fills them. Fails when a group cannot be staffed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := initLogger(cmd, cfg); err != nil {
				return err
			}
			return runAssign(cmd, cfg)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.wcifPath, "wcif", "i", "", `competition document, "-" for stdin`)
	fl.StringVar(&f.settingsPath, "settings", "", "settings file")
	fl.StringVar(&f.settingsText, "settings-text", "", "inline settings, e.g. \"stage 12; no_judge 333fm;\"")
	fl.StringVarP(&f.format, "format", "f", "", "output format: text, json or wcif")
	fl.StringVarP(&f.output, "output", "o", "", "output file, stdout when empty")
	fl.StringVar(&f.metricsPath, "metrics", "", "write a Prometheus textfile here")
	fl.IntVar(&f.stageCapacity, "stage-capacity", 0, "capacity of rooms without a stage statement")
	fl.Float64Var(&f.fastFactor, "fast-factor", 0, "fast competitor factor")
	return cmd
}

func (f *assignFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("wcif") {
		cfg.WCIFPath = f.wcifPath
	}
	if fl.Changed("settings") {
		cfg.SettingsPath = f.settingsPath
		cfg.Settings = ""
	}
	if fl.Changed("settings-text") {
		cfg.Settings = f.settingsText
	}
	if fl.Changed("format") {
		cfg.OutputFormat = f.format
	}
	if fl.Changed("output") {
		cfg.OutputPath = f.output
	}
	if fl.Changed("metrics") {
		cfg.MetricsPath = f.metricsPath
	}
	if fl.Changed("stage-capacity") {
		cfg.StageCapacity = f.stageCapacity
	}
	if fl.Changed("fast-factor") {
		cfg.FastFactor = f.fastFactor
	}
}

func runAssign(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	log := logger.Named("heats")

	comp, err := readCompetition(cmd.InOrStdin(), cfg.WCIFPath)
	if err != nil {
		return err
	}
	text, err := cfg.SettingsText()
	if err != nil {
		return err
	}
	opts, err := serviceOptions(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, service.WithLogger(log), service.WithSettingsText(text))

	result, runErr := service.New(opts...).Run(ctx, comp)
	if cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(cfg.MetricsPath); err != nil {
			log.Warn(ctx, "metrics textfile not written", logger.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	render := func(out io.Writer) error {
		return report.New().Write(out, format, result, comp)
	}
	if cfg.OutputPath == "" {
		return render(cmd.OutOrStdout())
	}
	file, err := os.Create(cfg.OutputPath)
	if err != nil {
		return err
	}
	return writeAndClose(file, render)
}

// writeAndClose renders into w and closes it. A render error wins over the
// close error.
func writeAndClose(w io.WriteCloser, render func(io.Writer) error) error {
	if err := render(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func serviceOptions(cfg *config.Config) ([]service.Option, error) {
	excluded, err := cfg.FastExcludedEvents()
	if err != nil {
		return nil, err
	}
	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}
	scramble, err := cfg.ScrambleCosts()
	if err != nil {
		return nil, err
	}
	judge, err := cfg.JudgeCosts()
	if err != nil {
		return nil, err
	}
	staff, err := cfg.StaffMultipliers()
	if err != nil {
		return nil, err
	}
	return []service.Option{
		service.WithFastFactor(cfg.FastFactor),
		service.WithFastExcluded(excluded...),
		service.WithThresholds(thresholds),
		service.WithScramblerMinAge(cfg.ScramblerMinAge),
		service.WithScrambleCosts(scramble),
		service.WithJudgeCosts(judge),
		service.WithStaffMultipliers(staff),
		service.WithDefaultStageCapacity(cfg.StageCapacity),
	}, nil
}

func readCompetition(stdin io.Reader, path string) (*wcif.Competition, error) {
	if path == "" || path == "-" {
		return wcif.Decode(stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open competition: %w", err)
	}
	defer file.Close()
	return wcif.Decode(file)
}
