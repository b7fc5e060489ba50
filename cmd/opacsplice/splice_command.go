package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"opacsplice/internal/logging"
	"opacsplice/internal/opacity"
	"opacsplice/internal/pipeline"
)

func newSpliceCommand(ctx *commandContext) *cobra.Command {
	var (
		x, z, spliceT       float64
		opalPath, lowTemp   string
		lowTempSets, output string
		plot                bool
	)

	cmd := &cobra.Command{
		Use:   "splice",
		Short: "Build a spliced opacity table for one composition",
		Long: "Reads the OPAL and LA08 tables, keeps the low-temperature rows below the\n" +
			"splice temperature, and fills every row from it upward by querying the\n" +
			"interpolation program once per (logT, logR) point.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("hydrogen") {
				cfg.Composition.X = x
			}
			if flags.Changed("metals") {
				cfg.Composition.Z = z
			}
			if flags.Changed("splice-t") {
				cfg.Splice.Temperature = spliceT
			}
			if flags.Changed("opal") {
				cfg.Inputs.OPALTable = opalPath
			}
			if flags.Changed("low-temp") {
				cfg.Inputs.LA08Table = lowTemp
			}
			if flags.Changed("low-temp-sets") {
				cfg.Inputs.LA08Sets = lowTempSets
			}
			if flags.Changed("output") {
				cfg.Output.Path = output
			}
			if flags.Changed("plot") {
				cfg.Output.ComparisonPlot = plot
			}
			if err := cfg.Normalize(); err != nil {
				return fmt.Errorf("normalize config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			summary, err := pipeline.Run(cmd.Context(), cfg, pipeline.Options{Logger: logger})
			if err != nil {
				if opacity.IsFatal(err) {
					logging.ErrorWithContext(logger, "splice aborted", "splice_aborted",
						logging.String(logging.FieldErrorHint, "check the input tables, composition, and splice temperature"),
						logging.Error(err),
					)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", summary.OutputPath)
			fmt.Fprintf(out, "  composition:  %s (table %d)\n", summary.Fractions, summary.TableIndex)
			fmt.Fprintf(out, "  rows:         %d (oracle from row %d)\n", summary.Rows, summary.SpliceRow)
			fmt.Fprintf(out, "  oracle cells: %d\n", summary.OracleHits)
			fmt.Fprintf(out, "  sentinels:    %d\n", summary.Sentinels)
			if summary.Cache != nil {
				fmt.Fprintf(out, "  cache:        %d hits, %d misses\n", summary.Cache.Hits, summary.Cache.Misses)
			}
			if summary.PlotPath != "" {
				fmt.Fprintf(out, "  plot:         %s\n", summary.PlotPath)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64VarP(&x, "hydrogen", "X", 0, "Hydrogen mass fraction X")
	flags.Float64VarP(&z, "metals", "Z", 0, "Metal mass fraction Z")
	flags.Float64Var(&spliceT, "splice-t", 0, "log10 T at which oracle rows begin")
	flags.StringVar(&opalPath, "opal", "", "OPAL table file")
	flags.StringVar(&lowTemp, "low-temp", "", "LA08 low-temperature table file")
	flags.StringVar(&lowTempSets, "low-temp-sets", "", "LA08 composition sets file")
	flags.StringVarP(&output, "output", "o", "", "Spliced table destination")
	flags.BoolVarP(&plot, "plot", "s", false, "Write the comparison plot")
	return cmd
}
