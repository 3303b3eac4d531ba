package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshharrison/critpath/internal/config"
	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/delay"
	"github.com/joshharrison/critpath/internal/netlist"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/ui"
)

var (
	flagConfig         string
	flagDelayFile      string
	flagDefaultDelay   float64
	flagScale          float64
	flagImplicitInputs bool
	flagLogLevel       string
	flagJSON           bool
	flagYAML           bool
	flagCone           string
	flagFormat         string
)

// Loaded in the root command's PersistentPreRunE.
var (
	v      *viper.Viper
	cfg    *config.Config
	logger *log.Logger
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "critpath",
		Short: "Find the critical timing path through a digital circuit netlist",
		Long: `critpath reads a plain-text netlist of typed components (INPUT, OUTPUT,
ADD, MUL, REG, ...), assigns each a propagation delay and reports the
longest-delay path from a source to a sink along with its total delay.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default .critpath.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&flagDelayFile, "delays", "", "JSON delay table file")
	rootCmd.PersistentFlags().Float64Var(&flagDefaultDelay, "default-delay", delay.DefaultUnknown, "Delay for component types without an entry")
	rootCmd.PersistentFlags().Float64Var(&flagScale, "scale", 1.0, "Multiply displayed delays by this factor")
	rootCmd.PersistentFlags().BoolVar(&flagImplicitInputs, "implicit-inputs", false, "Treat undefined input references as INPUT components")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(delaysCmd())

	return rootCmd
}

// setup loads .env, merges config sources and builds the logger.
func setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	v = config.NewViper()
	if err := config.BindFlags(v, cmd.Flags(), map[string]string{
		"delays":          "delay_file",
		"default-delay":   "default_delay",
		"scale":           "display_scale",
		"implicit-inputs": "implicit_inputs",
		"log-level":       "log_level",
		"max-parallel":    "max_parallel",
		"port":            "viewer_port",
		"model":           "model",
	}); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(v, flagConfig)
	if err != nil {
		return err
	}

	logger = ui.NewLogger(os.Stderr, cfg.LogLevel)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

// analyzeOne parses, analyzes and reports a single netlist file using the
// effective configuration.
func analyzeOne(path string) (*reporter.Report, error) {
	table, err := cfg.DelayTable()
	if err != nil {
		return nil, err
	}

	opts := []netlist.Option{netlist.WithDelays(table), netlist.WithLogger(logger)}
	if cfg.ImplicitInputs {
		opts = append(opts, netlist.WithImplicitInputs())
	}

	c, err := netlist.ParseFile(path, opts...)
	if err != nil {
		return nil, err
	}

	if flagCone != "" {
		if c, err = c.FanInCone(flagCone); err != nil {
			return nil, err
		}
	}

	result, err := cpm.Analyze(c)
	if err != nil {
		return nil, fmt.Errorf("timing analysis: %w", err)
	}

	return reporter.Build(path, c, result, cfg.DisplayScale), nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n🛑 %s\n", ui.Yellow("Received interrupt, cancelling..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	cmd.Start()
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
