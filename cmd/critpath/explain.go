package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/claude"
	"github.com/joshharrison/critpath/internal/reporter"
	"github.com/joshharrison/critpath/internal/ui"
)

func explainCmd() *cobra.Command {
	var (
		flagModel          string
		flagPromptTemplate string
	)

	cmd := &cobra.Command{
		Use:   "explain <netlist>",
		Short: "Ask Claude to explain the critical path and suggest register placement",
		Long: `Analyzes the netlist, sends the summary to the Anthropic API and prints a
short explanation with suggested pipeline register insertion points.
Requires ANTHROPIC_API_KEY (it may be set in .env).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := analyzeOne(args[0])
			if err != nil {
				return err
			}

			client, err := claude.NewClient("", cfg.Model)
			if err != nil {
				return err
			}
			client.PromptTemplate = flagPromptTemplate

			rpt := reporter.New(rep)
			rpt.PrintSummary(os.Stdout)

			ctx, cancel := signalContext()
			defer cancel()

			logger.Debug("requesting explanation", "circuit", rep.Name)
			result, err := client.Explain(ctx, rep, plainSummary(rpt))
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(result)
			}

			fmt.Printf("\n🧠 %s\n%s\n", ui.BoldCyan("Explanation"), result.Summary)
			if len(result.Suggestions) == 0 {
				fmt.Println(ui.Dim("No register insertion points suggested."))
				return nil
			}
			fmt.Printf("\n%s\n", ui.BoldCyan("Suggested register insertion points"))
			for i, s := range result.Suggestions {
				ct := rep.Component(s.After)
				fmt.Printf("  %d. after %s %s\n", i+1, ui.ComponentLabel(s.After, ct.Type), ui.Dim(s.Reason))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagModel, "model", "", "Claude model (default from config)")
	cmd.Flags().StringVar(&flagPromptTemplate, "prompt-template", "", "Custom prompt template path")

	return cmd
}

// plainSummary renders the summary without color codes.
func plainSummary(rpt *reporter.Reporter) string {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()
	return rpt.PrintSummary(io.Discard)
}
