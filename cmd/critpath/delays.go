package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshharrison/critpath/internal/ui"
)

func delaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delays",
		Short: "Print the effective delay table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := cfg.DelayTable()
			if err != nil {
				return err
			}

			if flagJSON {
				delays := make(map[string]float64)
				for _, typ := range table.Types() {
					delays[typ] = table.DelayOf(typ)
				}
				return outputJSON(map[string]interface{}{
					"default": table.Fallback(),
					"delays":  delays,
				})
			}

			fmt.Printf("%s\n", ui.BoldCyan("Delay Table"))
			for _, typ := range table.Types() {
				fmt.Printf("  %s %-8s %.2f\n", ui.TypeIcon(typ), ui.ComponentLabel(typ, typ), table.DelayOf(typ))
			}
			fmt.Printf("  %s %-8s %.2f\n", ui.TypeIcon(""), ui.Dim("(other)"), table.Fallback())
			return nil
		},
	}
	return cmd
}
