package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lumina/internal/config"
	"lumina/internal/store"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect and toggle watch projects",
	}

	projectsCmd.AddCommand(newProjectsListCommand(ctx))
	projectsCmd.AddCommand(newProjectsToggleCommand(ctx, "enable", true))
	projectsCmd.AddCommand(newProjectsToggleCommand(ctx, "disable", false))

	return projectsCmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects and their watch settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				projects, err := st.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects found")
					return nil
				}

				rows := make([][]string, 0, len(projects))
				for _, project := range projects {
					rows = append(rows, []string{
						strconv.FormatInt(project.ID, 10),
						project.Name,
						yesNo(project.Watch.Enabled),
						project.Watch.FolderID,
						project.Watch.TemplateID,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Watching", "Folder", "Template"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newProjectsToggleCommand(ctx *commandContext, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <project-id>",
		Short: verb + " watching for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				updated, err := st.SetWatchEnabled(cmd.Context(), projectID, enabled)
				if err != nil {
					return err
				}
				if !updated {
					return fmt.Errorf("project %d not found", projectID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %d watching: %s\n", projectID, yesNo(enabled))
				return nil
			})
		},
	}
}
