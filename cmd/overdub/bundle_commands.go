package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"overdub/internal/bundle"
	"overdub/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a project to a self-contained zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withManager(func(m *store.Manager) error {
				p, err := m.Load(args[0])
				if err != nil {
					return err
				}

				codec := bundle.New(m, cfg.Export.MinAudioBytes, logger)
				data, err := codec.Export(p)
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outPath)
				if target == "" {
					target = filepath.Join(cfg.Paths.ExportDir, p.ID+".zip")
				}
				if err := os.WriteFile(target, data, 0o644); err != nil {
					return fmt.Errorf("write archive: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s (%s)\n", p.Name, target, formatBytes(int64(len(data))))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Archive destination (default <export_dir>/<id>.zip)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var newName string

	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Import a project archive into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			return ctx.withManager(func(m *store.Manager) error {
				codec := bundle.New(m, cfg.Export.MinAudioBytes, logger)
				p, err := codec.Import(data, newName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s as %s (%s)\n", args[0], p.Name, p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&newName, "name", "n", "", "Name for the imported project")
	return cmd
}
