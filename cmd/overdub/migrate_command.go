package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"overdub/internal/config"
	"overdub/internal/legacy"
	"overdub/internal/store"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the old keyed cache into projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			dir := strings.TrimSpace(cacheDir)
			if dir == "" {
				dir = cfg.Paths.LegacyCacheDir
			} else {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve cache dir: %w", err)
				}
				dir = expanded
			}

			return ctx.withManager(func(m *store.Manager) error {
				result, err := legacy.New(dir, m, logger).Run()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Migrated: %d\n", result.Migrated)
				fmt.Fprintf(out, "Skipped (already present): %d\n", result.Skipped)
				if result.Failed > 0 {
					fmt.Fprintf(out, "Failed (unreadable): %d\n", result.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Legacy cache directory (default from config)")
	return cmd
}
