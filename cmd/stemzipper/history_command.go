package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"stemzipper/internal/history"
)

type historyRunReport struct {
	ID         string                 `json:"id"`
	Status     string                 `json:"status"`
	SourceDir  string                 `json:"source_dir"`
	OutputDir  string                 `json:"output_dir"`
	StartedAt  time.Time              `json:"started_at"`
	DurationMS int64                  `json:"duration_ms"`
	Files      int                    `json:"files"`
	Splits     int                    `json:"splits"`
	Warnings   int                    `json:"warnings"`
	ArchiveCnt int                    `json:"archive_count"`
	Error      string                 `json:"error,omitempty"`
	Archives   []historyArchiveReport `json:"archives,omitempty"`
}

type historyArchiveReport struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	Members   int    `json:"members"`
	Volumes   int    `json:"volumes"`
	Oversized bool   `json:"oversized"`
}

func newHistoryRunReport(run history.Run) historyRunReport {
	report := historyRunReport{
		ID:         run.ID,
		Status:     string(run.Status),
		SourceDir:  run.SourceDir,
		OutputDir:  run.OutputDir,
		StartedAt:  run.StartedAt,
		DurationMS: run.Duration().Milliseconds(),
		Files:      run.FileCount,
		Splits:     run.SplitCount,
		Warnings:   run.WarningCount,
		ArchiveCnt: run.ArchiveCount,
		Error:      run.ErrorMessage,
	}
	for _, a := range run.Archives {
		report.Archives = append(report.Archives, historyArchiveReport{
			Name:      a.Name,
			Path:      a.Path,
			SizeBytes: a.SizeBytes,
			Members:   a.MemberCount,
			Volumes:   a.VolumeCount,
			Oversized: a.Oversized,
		})
	}
	return report
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("run history is disabled; set [history] enabled = true")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent packing runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					reports := make([]historyRunReport, 0, len(runs))
					for _, run := range runs {
						reports = append(reports, newHistoryRunReport(run))
					}
					return writeJSON(cmd, reports)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded yet.")
					return nil
				}
				tbl := newReportTable(
					reportColumn{header: "ID"},
					reportColumn{header: "Started"},
					reportColumn{header: "Status"},
					reportColumn{header: "Files", numeric: true},
					reportColumn{header: "Archives", numeric: true},
					reportColumn{header: "Warnings", numeric: true},
					reportColumn{header: "Source"},
				)
				for _, run := range runs {
					tbl.addRow(
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						string(run.Status),
						strconv.Itoa(run.FileCount),
						strconv.Itoa(run.ArchiveCount),
						strconv.Itoa(run.WarningCount),
						run.SourceDir,
					)
				}
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and the archives it produced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := resolveRun(cmd, store, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, newHistoryRunReport(*run))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Run "+shortID(run.ID), colorize) {
					fmt.Fprintln(out, line)
				}
				kind := statusOK
				switch run.Status {
				case history.StatusFailed:
					kind = statusError
				case history.StatusCancelled, history.StatusEmpty:
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Status", kind, string(run.Status), colorize))
				fmt.Fprintln(out, renderStatusLine("Source", statusInfo, run.SourceDir, colorize))
				fmt.Fprintln(out, renderStatusLine("Output", statusInfo, run.OutputDir, colorize))
				fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
				fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize))
				fmt.Fprintln(out, renderStatusLine("Limit", statusInfo, humanize.IBytes(uint64(run.CapacityBytes)), colorize))
				if run.ErrorMessage != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, run.ErrorMessage, colorize))
				}
				if len(run.Archives) == 0 {
					return nil
				}
				tbl := newReportTable(
					reportColumn{header: "Archive"},
					reportColumn{header: "Files", numeric: true},
					reportColumn{header: "Size", numeric: true},
					reportColumn{header: "Volumes", numeric: true},
					reportColumn{header: "Oversized"},
				)
				for _, a := range run.Archives {
					tbl.addRow(
						a.Name,
						strconv.Itoa(a.MemberCount),
						humanize.IBytes(uint64(a.SizeBytes)),
						strconv.Itoa(a.VolumeCount),
						yesNo(a.Oversized),
					)
				}
				fmt.Fprintln(out, tbl.render())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			return withHistory(ctx, func(store *history.Store) error {
				cutoff := time.Now().AddDate(0, 0, -days)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs started before %s\n", removed, cutoff.Format(time.DateOnly))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Keep runs from the last N days")
	return cmd
}

// resolveRun accepts a full run ID or the 8-character prefix shown in lists.
func resolveRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, error) {
	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	runs, err := store.Recent(cmd.Context(), 500)
	if err != nil {
		return nil, err
	}
	var match *history.Run
	for i := range runs {
		if shortID(runs[i].ID) != id {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run id %q is ambiguous", id)
		}
		match = &runs[i]
	}
	if match == nil {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return store.Get(cmd.Context(), match.ID)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
