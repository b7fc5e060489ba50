package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"opacsplice/internal/tablefile"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "lookup <table> <logT> <logR>",
		Short:       "Interpolate log kappa from a spliced table",
		Args:        cobra.ExactArgs(3),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logT, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("parse logT %q: %w", args[1], err)
			}
			logR, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("parse logR %q: %w", args[2], err)
			}
			grid, err := tablefile.Read(args[0])
			if err != nil {
				return err
			}
			lookup, err := tablefile.NewLookup(grid)
			if err != nil {
				return err
			}
			v, err := lookup.Eval(logT, logR)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", v)
			return nil
		},
	}
}
