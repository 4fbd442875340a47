package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"signaldash/internal/app"
	"signaldash/internal/config"
	"signaldash/internal/infrastructure"
	"signaldash/internal/services"
	"signaldash/internal/signals"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	source     string
	file       string
	sheet      string
	period     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "signalctl",
		Short: "Inspect and export trading signal performance",
		Long: `signalctl loads the signal sheet the dashboard reads, cleans it and
prints the same statistics, insights and table the web dashboard shows.

The source is taken from the dashboard configuration (config.yaml and
SIGDASH_* variables) unless overridden with --source and --file.

Examples:
  signalctl stats --period week
  signalctl table --source csv --file signals.csv
  signalctl export --format xlsx --out signals.xlsx`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: SIGDASH_CONFIG_FILE or ./config.yaml)")
	flags.StringVar(&opts.source, "source", "", "row source: sheets, csv or xlsx")
	flags.StringVarP(&opts.file, "file", "f", "", "CSV or XLSX file for file sources")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet name for xlsx sources (default: first sheet)")
	flags.StringVarP(&opts.period, "period", "p", "", "reporting period: week, month or all (default: dashboard.default_period)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newStatsCmd(opts),
		newTableCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load builds the report for the selected period from the configured source.
func (o *rootOptions) load(cmd *cobra.Command) (*services.Report, error) {
	override := func(c *config.Config) {
		if o.source != "" {
			c.Source.Kind = o.source
		}
		if o.file != "" {
			c.Source.File = o.file
			if o.source == "" {
				c.Source.Kind = config.SourceCSV
			}
		}
		if o.sheet != "" {
			c.Source.XLSXSheet = o.sheet
		}
		c.Logging.Output = "console"
		if o.verbose {
			c.Logging.Level = "debug"
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath, override)
	} else {
		cfg, err = config.Load(override)
	}
	if err != nil {
		return nil, err
	}

	logger, _, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(slog.String("command", cmd.Name()))

	rawPeriod := o.period
	if rawPeriod == "" {
		rawPeriod = cfg.Dashboard.DefaultPeriod
	}
	period, err := signals.ParsePeriod(rawPeriod)
	if err != nil {
		return nil, err
	}

	source, err := app.NewSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location()
	svc := services.NewDashboardService(source, logger,
		services.WithClock(func() time.Time { return time.Now().In(loc) }),
		services.WithLoadTimeout(cfg.Dashboard.LoadTimeout),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return svc.Load(infrastructure.EnsureTraceID(ctx), period)
}
