package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/viewer"
)

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz <netlist>",
		Short: "Print the circuit grouped by logic level, or as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := analyzeOne(args[0])
			if err != nil {
				return err
			}

			rpt := reporter.New(rep)
			switch flagFormat {
			case "dot":
				return rpt.WriteDOT(os.Stdout)
			case "ascii":
				rpt.PrintLevels(os.Stdout)
				return nil
			default:
				return fmt.Errorf("unsupported format: %s (use ascii or dot)", flagFormat)
			}
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().StringVar(&flagCone, "cone", "", "Show only the fan-in cone of this component")

	return cmd
}

func viewCmd() *cobra.Command {
	var (
		flagPort   int
		flagNoOpen bool
	)

	cmd := &cobra.Command{
		Use:   "view <netlist>",
		Short: "Open the interactive browser viewer for a netlist",
		Long: `Analyzes the netlist, then sends the report to a viewer already listening
on --port or starts one in this process and serves until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := analyzeOne(args[0])
			if err != nil {
				return err
			}

			port := cfg.ViewerPort
			url := fmt.Sprintf("http://localhost:%d", port)

			if viewer.IsPortOpen(fmt.Sprintf("localhost:%d", port)) {
				if err := viewer.PostReport(url, rep); err != nil {
					return err
				}
				fmt.Printf("✅ Report sent to viewer at %s\n", url)
				if !flagNoOpen {
					openBrowser(url)
				}
				return nil
			}

			url, err = viewer.Start(port, rep)
			if err != nil {
				return err
			}
			fmt.Printf("🖥️  Viewer serving %s on %s (Ctrl-C to stop)\n", rep.Name, url)

			if !flagNoOpen {
				openBrowser(url)
			}

			ctx, cancel := signalContext()
			defer cancel()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().IntVar(&flagPort, "port", 7171, "Viewer port")
	cmd.Flags().BoolVar(&flagNoOpen, "no-open", false, "Skip opening browser")
	cmd.Flags().StringVar(&flagCone, "cone", "", "Show only the fan-in cone of this component")

	return cmd
}
