package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"opacsplice/internal/oraclecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the oracle response cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := oraclecache.Open(cmd.Context(), cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("open oracle cache: %w", err)
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Path", store.Path()},
				{"Enabled", yesNo(cfg.Cache.Enabled)},
				{"Entries", strconv.Itoa(stats.Entries)},
				{"Range misses", strconv.Itoa(stats.RangeMisses)},
				{"Oldest", formatTime(stats.Oldest)},
				{"Newest", formatTime(stats.Newest)},
				{"Size", fmt.Sprintf("%d bytes", stats.SizeBytes)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached oracle response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := oraclecache.Open(cmd.Context(), cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("open oracle cache: %w", err)
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached responses\n", removed)
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
