package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/colkit/pkg/cells"
	"github.com/ajitpratap0/colkit/pkg/config"
	"github.com/ajitpratap0/colkit/pkg/logger"
	"github.com/ajitpratap0/colkit/pkg/observability"
)

var version = "0.1.0"

// app carries the state shared by subcommands
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	loader   *cells.Loader
	shutdown func(context.Context) error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("COLKIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "colkit",
		Short: "colkit - inspect columnar ML datasets",
		Long: `colkit loads a JSON array as a column and prints views of it.
Numbers become numeric columns, strings text columns and arrays of numbers
tensor rows. With --cells, strings are treated as paths to lazily loaded
files or images.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	defaults := config.Default()
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	a.mustBind("config", flags.Lookup("config"))
	flags.String("log-level", defaults.Logging.Level, "Log level (debug, info, warn, error)")
	a.mustBind("logging.level", flags.Lookup("log-level"))
	flags.Int("max-rows", defaults.Display.MaxRows, "Rows shown before output is elided")
	a.mustBind("display.max_rows", flags.Lookup("max-rows"))
	flags.Int("max-width", defaults.Display.MaxWidth, "Maximum width of a rendered cell")
	a.mustBind("display.max_width", flags.Lookup("max-width"))
	flags.String("cells", "", "Treat strings as cell paths: file or image")
	a.mustBind("cells.kind", flags.Lookup("cells"))
	flags.String("cells-root", defaults.Cells.Root, "Directory relative cell paths resolve against")
	a.mustBind("cells.root", flags.Lookup("cells-root"))
	flags.StringP("output", "o", "text", "Output format (text, json)")
	a.mustBind("output", flags.Lookup("output"))
	flags.String("field", "", "Field read from Arrow, Parquet and Avro files (default first)")
	a.mustBind("field", flags.Lookup("field"))
	flags.Bool("lineage", false, "Print the provenance of the result")
	a.mustBind("lineage", flags.Lookup("lineage"))
	flags.String("trace", defaults.Observability.Exporter, "Trace exporter (none, stdout)")
	a.mustBind("observability.exporter", flags.Lookup("trace"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "colkit v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(a.headCmd(), a.tailCmd(), a.sampleCmd(), a.describeCmd(), a.convertCmd())
	return root
}

func (a *app) mustBind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

// setup loads the configuration file, applies flag and environment
// overrides and initializes logging and tracing
func (a *app) setup() error {
	cfg := config.Default()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	override := func(key string, apply func()) {
		if a.v.IsSet(key) {
			apply()
		}
	}
	override("logging.level", func() { cfg.Logging.Level = a.v.GetString("logging.level") })
	override("display.max_rows", func() { cfg.Display.MaxRows = a.v.GetInt("display.max_rows") })
	override("display.max_width", func() { cfg.Display.MaxWidth = a.v.GetInt("display.max_width") })
	override("cells.root", func() { cfg.Cells.Root = a.v.GetString("cells.root") })
	override("observability.exporter", func() { cfg.Observability.Exporter = a.v.GetString("observability.exporter") })
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	shutdown, err := observability.Init(cfg.Observability)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.shutdown = shutdown
	logger.Debug("configuration loaded",
		zap.Int("max_rows", cfg.Display.MaxRows),
		zap.String("cells_root", cfg.Cells.Root))
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = logger.Sync()
	a.loader.Close()
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}
