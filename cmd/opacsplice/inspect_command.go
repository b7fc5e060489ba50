package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"opacsplice/internal/la08"
	"opacsplice/internal/opacity"
	"opacsplice/internal/opal"
	"opacsplice/internal/textutil"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the compositions in a source table",
	}
	inspectCmd.AddCommand(newInspectOPALCommand(ctx))
	inspectCmd.AddCommand(newInspectLA08Command(ctx))
	return inspectCmd
}

func newInspectOPALCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "opal [path]",
		Short: "List the OPAL tables and their mass fractions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.Inputs.OPALTable
			if len(args) == 1 {
				path = args[0]
			}
			set, err := opal.Read(path, opal.Options{})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, set.Len())
			for i, table := range set.Tables {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					table.Fractions.X.String(),
					table.Fractions.Y.String(),
					table.Fractions.Z.String(),
					fractionSum(table.Fractions),
					strconv.Itoa(table.Grid.NumLogT()),
					strconv.Itoa(table.PaddedCells),
				})
			}
			headers := []string{"#", "X", "Y", "Z", "X+Y+Z", "logT rows", "padded cells"}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}))
			fmt.Fprintf(out, "%d tables in %s\n", set.Len(), path)
			return nil
		},
	}
}

func newInspectLA08Command(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "la08",
		Short: "List the LA08 tables and mark the one matching the configured composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := la08.Read(cfg.Inputs.LA08Table, cfg.Inputs.LA08Sets, la08.Options{})
			if err != nil {
				return err
			}
			match, matchErr := la08.FindIndex(set, cfg.Composition.X, cfg.Composition.Z)

			rows := make([][]string, 0, set.Len())
			for i, table := range set.Tables {
				logT := table.Grid.LogT()
				rows = append(rows, []string{
					strconv.Itoa(i),
					table.Fractions.X.String(),
					table.Fractions.Y.String(),
					table.Fractions.Z.String(),
					fractionSum(table.Fractions),
					fmt.Sprintf("%.2f..%.2f", logT[0], logT[len(logT)-1]),
					textutil.Ternary(matchErr == nil && i == match, "*", ""),
				})
			}
			headers := []string{"#", "X", "Y", "Z", "X+Y+Z", "logT range", "selected"}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}))
			if matchErr != nil {
				fmt.Fprintf(out, "No table matches X=%g Z=%g\n", cfg.Composition.X, cfg.Composition.Z)
			} else {
				fmt.Fprintf(out, "X=%g Z=%g selects table %d\n", cfg.Composition.X, cfg.Composition.Z, match)
			}
			return nil
		},
	}
}

// fractionSum renders X+Y+Z, flagging complete compositions that do not sum
// to one.
func fractionSum(m opacity.MassFractions) string {
	if !m.Complete() {
		return "?"
	}
	sum := strconv.FormatFloat(m.Sum(), 'f', 4, 64)
	return textutil.Ternary(m.Unbalanced(), sum+" !", sum)
}
