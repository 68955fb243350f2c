package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobmate/dashboard-service/internal/config"
	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/provider"
)

// withApp wires the service for one CLI command and tears it down after.
func withApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(ctx, a)
}

// withStoredApp is withApp for commands that only make sense against
// storage shared with the running service. The memory backend lives and
// dies with this process, so they refuse it.
func withStoredApp(cmd *cobra.Command, run func(ctx context.Context, a *app) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if a.cfg.StorageBackend == config.BackendMemory {
			return fmt.Errorf("%s needs STORAGE_BACKEND=%s or %s: memory storage does not outlive this command",
				cmd.CommandPath(), config.BackendRedis, config.BackendPostgres)
		}
		return run(ctx, a)
	})
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// ── jobs ────────────────────────────────────────────────────────────────────

func newJobsCommand() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List cached jobs, fetching them if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				jobs, err := a.jobs.Jobs(ctx)
				if err != nil {
					return fmt.Errorf("load jobs: %w", err)
				}
				renderJobs(cmd.OutOrStdout(), provider.FilterBySource(jobs, source))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "only jobs listed on this source (e.g. indeed)")
	return cmd
}

func renderJobs(w io.Writer, jobs []model.Job) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Company", "Position", "Location", "Work type", "Salary", "Sources"})
	for _, j := range jobs {
		t.AppendRow(table.Row{
			j.ID,
			j.CompanyName,
			j.Position,
			j.Location,
			string(j.WorkType),
			j.Salary,
			strings.Join(j.Sources, ", "),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(jobs)})
	t.Render()
}

// ── sections ────────────────────────────────────────────────────────────────

func newSectionsCommand() *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Show jobs grouped by source section",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if len(sources) == 0 {
					sources = a.cfg.Sections
				}
				renderSections(cmd.OutOrStdout(), a.jobs.Sections(ctx, sources))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", nil, "section sources in display order")
	return cmd
}

func renderSections(w io.Writer, sections []provider.Section) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Section", "Company", "Position", "Apply via", "Apply URL"})
	for _, s := range sections {
		if len(s.Jobs) == 0 {
			t.AppendRow(table.Row{s.Label, "(none)", "", "", ""})
			continue
		}
		for _, j := range s.Jobs {
			t.AppendRow(table.Row{s.Label, j.CompanyName, j.Position, j.ApplyVia, j.ApplyURL})
		}
		t.AppendSeparator()
	}
	t.Render()
}

// ── favorites ───────────────────────────────────────────────────────────────

func newFavoritesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Inspect starred jobs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorites with their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredApp(cmd, func(ctx context.Context, a *app) error {
				renderFavorites(cmd.OutOrStdout(), a.favorites.List(ctx))
				return nil
			})
		},
	})
	return cmd
}

func renderFavorites(w io.Writer, favs []favorites.Favorite) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Company", "Position", "Status", "Manual", "Added"})
	for _, f := range favs {
		manual := ""
		if favorites.IsManual(f) {
			manual = "yes"
		}
		t.AppendRow(table.Row{
			f.Key(),
			f.CompanyName,
			f.Position,
			f.Status.Label(),
			manual,
			f.AddedAt.Format("2006-01-02"),
		})
	}
	t.Render()
}

// ── cache ───────────────────────────────────────────────────────────────────

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the job cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the cached job list for the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredApp(cmd, func(ctx context.Context, a *app) error {
				a.jobs.Clear(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", a.jobs.CacheKey())
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Drop the cached job list and fetch it again",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStoredApp(cmd, func(ctx context.Context, a *app) error {
				jobs, err := a.jobs.Refresh(ctx)
				if err != nil {
					return fmt.Errorf("refresh: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s: %d jobs\n", a.jobs.CacheKey(), len(jobs))
				return nil
			})
		},
	})
	return cmd
}
