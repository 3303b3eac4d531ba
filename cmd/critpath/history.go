package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/state"
	"github.com/joshharrison/critpath/internal/ui"
)

func historyCmd() *cobra.Command {
	var flagClean bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analysis reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.New(cfg.StateDir)

			if flagClean {
				if err := store.Clean(); err != nil {
					return fmt.Errorf("clean history: %w", err)
				}
				fmt.Printf("🧹 %s\n", ui.Green("History cleared"))
				return nil
			}

			reports, err := store.List()
			if err != nil {
				return err
			}

			if flagJSON {
				data, err := reporter.JSONList(reports)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(reports) == 0 {
				fmt.Println(ui.Dim("No saved reports. Run `critpath analyze --save <netlist>` to record one."))
				return nil
			}

			fmt.Printf("%s\n", ui.BoldCyan("Analysis History"))
			fmt.Printf("  %-36s %-20s %-20s %s\n", "ID", "CREATED", "CIRCUIT", "DELAY")
			for _, rep := range reports {
				fmt.Printf("  %-36s %-20s %-20s %.2f\n",
					ui.BoldMagenta(rep.ID), rep.CreatedAt.Format("2006-01-02 15:04:05"), rep.Name, rep.ScaledDelay())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagClean, "clean", false, "Remove all saved reports")

	cmd.AddCommand(historyShowCmd())

	return cmd
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved report (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.New(cfg.StateDir)

			var (
				rep *reporter.Report
				err error
			)
			if len(args) == 1 {
				rep, err = store.Load(args[0])
			} else {
				rep, err = store.Latest("")
			}
			if err != nil {
				return err
			}
			if rep == nil {
				return fmt.Errorf("no saved reports")
			}

			if flagJSON {
				return printReports([]*reporter.Report{rep}, (*reporter.Reporter).JSON, reporter.JSONList)
			}
			rpt := reporter.New(rep)
			rpt.PrintSummary(os.Stdout)
			rpt.PrintSlack(os.Stdout)
			return nil
		},
	}
	return cmd
}
