package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"opacsplice/internal/preflight"
	"opacsplice/internal/textutil"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify inputs, output location, and the oracle program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failed := 0

			lines := renderSectionHeader(textutil.Title("files"), colorize)
			for _, result := range preflight.RunAll(cfg) {
				kind := textutil.Ternary(result.Passed, statusOK, statusError)
				if !result.Passed {
					failed++
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader(textutil.Title("oracle"), colorize)...)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				detail := status.Command
				if !status.Available {
					detail = status.Detail
					kind = textutil.Ternary(status.Optional, statusWarn, statusError)
					if !status.Optional {
						failed++
					}
				}
				lines = append(lines, renderStatusLine(status.Name, kind, detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader(textutil.Title("config"), colorize)...)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail = "defaults (no config file)"
			}
			configKind := statusOK
			if err := cfg.Validate(); err != nil {
				configKind = statusError
				configDetail = err.Error()
				failed++
			}
			lines = append(lines, renderStatusLine("Configuration", configKind, configDetail, colorize))
			lines = append(lines, renderStatusLine("Cache", statusOK, fmt.Sprintf("enabled=%s %s", yesNo(cfg.Cache.Enabled), cfg.Cache.Path), colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
