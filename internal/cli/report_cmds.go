package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/phrazzld/taskhub/internal/cli/formatter"
	"github.com/phrazzld/taskhub/internal/domain/summary"
	"github.com/phrazzld/taskhub/internal/domain/timeline"
	"github.com/phrazzld/taskhub/internal/domain/workload"
)

func newWorkloadCmd(app *App) *cobra.Command {
	var userID, projectID, status, availability string
	var year, month, week int

	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Show per-member workload, availability and overloaded weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var view workload.View
			var err error
			if view.UserID, err = parseOptionalUUID("user", userID); err != nil {
				return err
			}
			if view.ProjectID, err = parseOptionalUUID("project", projectID); err != nil {
				return err
			}
			if view.Status, err = parseStatus(status); err != nil {
				return err
			}
			if view.Month, err = parseMonth(month); err != nil {
				return err
			}
			if week < 0 || week > 6 {
				return fmt.Errorf("--week: must be between 1 and 6")
			}
			view.Year = year
			view.WeekOfMonth = week
			view.Availability = workload.Bucket(strings.ToLower(availability))
			if !view.Availability.Valid() {
				return fmt.Errorf("--availability: must be available, busy or overload")
			}

			snap := app.API.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			printNotices(out, snap.Notices)
			fmt.Fprint(out, formatter.FormatWorkload(workload.BuildDashboard(snap.Users, snap.Tasks, view, app.now())))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Only this member")
	cmd.Flags().StringVar(&projectID, "project", "", "Only tasks of this project")
	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status")
	cmd.Flags().IntVar(&year, "year", 0, "Overload notices in this year")
	cmd.Flags().IntVar(&month, "month", 0, "Tasks due and overloads in this month (1-12)")
	cmd.Flags().IntVar(&week, "week", 0, "Week of the month (1-6)")
	cmd.Flags().StringVar(&availability, "availability", "", "available, busy or overload")
	return cmd
}

func newTimelineCmd(app *App) *cobra.Command {
	var projectID, status, moduleID, granularity string
	var year int

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the Gantt timeline grouped by project and module",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := timeline.View{Year: year}
			var err error
			if view.Granularity, err = timeline.ParseGranularity(granularity); err != nil {
				return fmt.Errorf("--granularity: %w", err)
			}
			if view.ProjectID, err = parseOptionalUUID("project", projectID); err != nil {
				return err
			}
			if view.Status, err = parseStatus(status); err != nil {
				return err
			}
			if strings.EqualFold(moduleID, "none") {
				none := uuid.Nil
				view.ModuleID = &none
			} else if view.ModuleID, err = parseOptionalUUID("module", moduleID); err != nil {
				return err
			}

			snap := app.API.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			printNotices(out, snap.Notices)
			fmt.Fprint(out, formatter.FormatTimeline(timeline.Build(snap.Projects, snap.Tasks, view, app.now())))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to show (default current)")
	cmd.Flags().StringVar(&granularity, "granularity", string(timeline.DefaultGranularity), "weekly, monthly or quarterly")
	cmd.Flags().StringVar(&projectID, "project", "", "Only this project")
	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status")
	cmd.Flags().StringVar(&moduleID, "module", "", `Only this module, or "none" for tasks without one`)
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	var name, status, projectID string
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals, member and project progress, and working hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := summary.Filter{Name: strings.TrimSpace(name)}
			var err error
			if filter.Status, err = parseStatus(status); err != nil {
				return err
			}
			if filter.ProjectID, err = parseOptionalUUID("project", projectID); err != nil {
				return err
			}
			m, err := parseMonth(month)
			if err != nil {
				return err
			}

			now := app.now()
			if year == 0 {
				year = now.Year()
			}
			if m == 0 {
				m = now.Month()
			}

			snap := app.API.Snapshot(cmd.Context())
			out := cmd.OutOrStdout()
			printNotices(out, snap.Notices)
			report := summary.Build(snap.Users, snap.Projects, snap.Tasks, filter)
			hours := summary.MemberWorkingHours(snap.Users, snap.Tasks, year, m)
			fmt.Fprint(out, formatter.FormatSummary(report, hours, year, m))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Members whose name contains this text")
	cmd.Flags().StringVar(&status, "status", "", "Members with at least one task in this status")
	cmd.Flags().StringVar(&projectID, "project", "", "Members with tasks in this project")
	cmd.Flags().IntVar(&year, "year", 0, "Working hours year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "Working hours month (default current)")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.API.Snapshot(cmd.Context())
			printNotices(cmd.ErrOrStderr(), snap.Notices)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := summary.WriteCSV(w, snap.Users, snap.Projects, snap.Tasks); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "File to write, - for stdout")
	return cmd
}
