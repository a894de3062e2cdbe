package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"overdub/internal/store"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Check and repair store consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				stats, err := m.CheckAndRepair()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !stats.Dirty() {
					fmt.Fprintln(out, "Store is consistent.")
					return nil
				}
				fmt.Fprintf(out, "Dropped entries without payloads: %d\n", stats.OrphanedEntries)
				fmt.Fprintf(out, "Re-adopted orphaned payloads:     %d\n", stats.OrphanedPayloads)
				fmt.Fprintf(out, "Removed unreadable payloads:      %d\n", stats.CorruptedPayloads)
				fmt.Fprintf(out, "Swept temp files:                 %d\n", stats.TempFiles)
				return nil
			})
		},
	}
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	var maxAgeDays int
	var maxCount int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove stale projects per the retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-age-days") {
				maxAgeDays = cfg.Retention.MaxAgeDays
			}
			if !cmd.Flags().Changed("max-count") {
				maxCount = cfg.Retention.MaxCount
			}

			return ctx.withManager(func(m *store.Manager) error {
				removed, err := m.RetentionSweep(maxAgeDays, maxCount)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(removed) == 0 {
					fmt.Fprintln(out, "Nothing to sweep.")
					return nil
				}
				fmt.Fprintf(out, "Removed %d project(s):\n", len(removed))
				for _, id := range removed {
					fmt.Fprintf(out, "  %s\n", id)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxAgeDays, "max-age-days", 0, "Remove projects not updated in this many days")
	cmd.Flags().IntVar(&maxCount, "max-count", 0, "Keep at most this many projects")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				stats := m.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Projects: %d\n", stats.TotalProjects)
				fmt.Fprintf(out, "Payloads: %s\n", formatBytes(stats.TotalBytes))
				if stats.LastCleanup != nil {
					fmt.Fprintf(out, "Last sweep: %s\n", stats.LastCleanup.Local().Format("2006-01-02 15:04:05"))
				}

				if len(stats.ByStage) > 0 {
					rows := make([][]string, 0, len(stats.ByStage))
					for stage, count := range stats.ByStage {
						rows = append(rows, []string{string(stage), fmt.Sprintf("%d", count)})
					}
					sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable([]string{"Stage", "Projects"}, rows, []columnAlignment{alignLeft, alignRight}))
				}
				if len(stats.ByLanguage) > 0 {
					rows := make([][]string, 0, len(stats.ByLanguage))
					for lang, count := range stats.ByLanguage {
						rows = append(rows, []string{lang, fmt.Sprintf("%d", count)})
					}
					sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable([]string{"Language", "Projects"}, rows, []columnAlignment{alignLeft, alignRight}))
				}
				return nil
			})
		},
	}
}
