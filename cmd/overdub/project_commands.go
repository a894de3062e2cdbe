package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"overdub/internal/project"
	"overdub/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var includeShared bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				entries := m.List(includeShared)
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No projects.")
					return nil
				}
				fmt.Fprintln(out, renderEntryTable(entries))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeShared, "include-shared", true, "Include shared projects in the listing")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				p, err := m.Load(args[0])
				if err != nil {
					return err
				}
				printProject(cmd, p)
				return nil
			})
		},
	}
}

func printProject(cmd *cobra.Command, p *project.Project) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Name:        %s\n", p.DisplayName())
	if p.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", p.Description)
	}
	fmt.Fprintf(out, "Stage:       %s (%s complete)\n", p.StageLabel(), formatPercent(p.CompletionPercentage))
	if p.OriginalFilename != "" {
		fmt.Fprintf(out, "Source:      %s (%s)\n", p.OriginalFilename, formatBytes(p.FileSize))
	}
	fmt.Fprintf(out, "Segments:    %d\n", p.TotalSegments)
	fmt.Fprintf(out, "Duration:    %s\n", formatSeconds(p.TotalDuration))
	if len(p.Tags) > 0 {
		fmt.Fprintf(out, "Tags:        %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(out, "Shared:      %s\n", yesNo(p.IsShared))
	fmt.Fprintf(out, "Created:     %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:     %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	active := p.ActiveSegments()
	if len(active) == 0 {
		return
	}
	rows := make([][]string, 0, len(active))
	for _, seg := range active {
		rows = append(rows, []string{
			seg.ID,
			fmt.Sprintf("%.1f-%.1f", seg.Start, seg.End),
			truncate(seg.CurrentText(), 48),
			yesNo(seg.HasAudioFile),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Segment", "Span", "Text", "Audio"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project, optionally seeded from a subtitle file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" && filePath == "" {
				return fmt.Errorf("a project name or --file is required")
			}

			return ctx.withManager(func(m *store.Manager) error {
				var p *project.Project
				if filePath != "" {
					content, err := os.ReadFile(filePath)
					if err != nil {
						return fmt.Errorf("read subtitle file: %w", err)
					}
					p = project.NewFromFile(filePath, content, name, description)
				} else {
					p = project.New(name, description)
				}
				if err := m.Save(p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Subtitle file to seed the project from")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				if err := m.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func newDuplicateCommand(ctx *commandContext) *cobra.Command {
	var newName string

	cmd := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a project under a new identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				dup, err := m.Duplicate(args[0], newName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) from %s\n", dup.Name, dup.ID, args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&newName, "name", "n", "", "Name for the copy")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search projects by name, description, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(func(m *store.Manager) error {
				entries := m.Search(args[0])
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No projects match %q.\n", args[0])
					return nil
				}
				fmt.Fprintln(out, renderEntryTable(entries))
				return nil
			})
		},
	}
}

func renderEntryTable(entries []store.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.ID,
			truncate(entry.Name, 32),
			string(entry.ProcessingStage),
			formatPercent(entry.CompletionPercentage),
			fmt.Sprintf("%d", entry.TotalSegments),
			entry.TargetLanguage,
			entry.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Stage", "Done", "Segments", "Language", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	)
}
