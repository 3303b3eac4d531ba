package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/batch"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/state"
	"github.com/joshharrison/critpath/internal/ui"
)

func analyzeCmd() *cobra.Command {
	var (
		flagMaxParallel int
		flagFailFast    bool
		flagSlack       bool
		flagSave        bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <netlist>...",
		Short: "Report the critical path of one or more netlists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := cfg.DelayTable()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			runner := batch.New(batch.Config{
				MaxParallel:    cfg.MaxParallel,
				FailFast:       flagFailFast,
				Delays:         &table,
				ImplicitInputs: cfg.ImplicitInputs,
				Cone:           flagCone,
				DisplayScale:   cfg.DisplayScale,
				Logger:         logger,
			})

			outcomes, runErr := runner.Run(ctx, args)

			var reports []*reporter.Report
			for _, out := range outcomes {
				if out.Report != nil {
					reports = append(reports, out.Report)
				}
			}

			if flagSave {
				store := state.New(cfg.StateDir)
				for _, rep := range reports {
					path, err := store.Save(rep)
					if err != nil {
						return err
					}
					logger.Info("saved report", "id", rep.ID, "path", path)
				}
			}

			switch {
			case flagJSON:
				if err := printReports(reports, (*reporter.Reporter).JSON, reporter.JSONList); err != nil {
					return err
				}
			case flagYAML:
				if err := printReports(reports, (*reporter.Reporter).YAML, reporter.YAMLList); err != nil {
					return err
				}
			default:
				ui.PrintLogo()
				for _, rep := range reports {
					rpt := reporter.New(rep)
					rpt.PrintSummary(os.Stdout)
					if flagSlack {
						rpt.PrintSlack(os.Stdout)
					}
				}
			}

			failed := batch.Failed(outcomes)
			for _, out := range failed {
				fmt.Fprintf(os.Stderr, "  ❌ %s %s: %v\n", ui.Red(string(out.Status)), out.Path, out.Err)
			}

			if runErr != nil {
				return runErr
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d netlists failed", len(failed), len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagMaxParallel, "max-parallel", 4, "Max netlists analyzed concurrently")
	cmd.Flags().BoolVar(&flagFailFast, "fail-fast", false, "Stop at the first netlist that fails")
	cmd.Flags().BoolVar(&flagSlack, "slack", false, "Print the per-component timing table")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Record the report in the analysis history")
	cmd.Flags().BoolVar(&flagYAML, "yaml", false, "YAML output")
	cmd.Flags().StringVar(&flagCone, "cone", "", "Analyze only the fan-in cone of this component")

	return cmd
}

// printReports writes a single report as an object and several as a list.
func printReports(reports []*reporter.Report, one func(*reporter.Reporter) ([]byte, error), many func([]*reporter.Report) ([]byte, error)) error {
	var (
		data []byte
		err  error
	)
	if len(reports) == 1 {
		data, err = one(reporter.New(reports[0]))
	} else {
		data, err = many(reports)
	}
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}
