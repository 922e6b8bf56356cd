package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stemzipper/internal/config"
	"stemzipper/internal/history"
	"stemzipper/internal/i18n"
	"stemzipper/internal/logging"
	"stemzipper/internal/packerr"
	"stemzipper/internal/workflow"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	var maxSize int
	var outDir string
	var noSplit bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Pack the audio files in a folder into size-limited archives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tr := ctx.translator()
			stderr := cmd.ErrOrStderr()
			if msg := applyMaxSize(cmd, cfg, tr, maxSize); msg != "" {
				fmt.Fprintln(stderr, msg)
			}

			interactive := !jsonOutput && shouldColorize(stderr)
			quiet := ""
			if interactive || jsonOutput {
				quiet = "warn"
			}
			logger, err := ctx.logger(quiet)
			if err != nil {
				return err
			}

			opts := []workflow.Option{}
			if cfg.History.Enabled {
				store, err := history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "delete the history database or disable [history]"),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
					)
				} else {
					defer store.Close()
					opts = append(opts, workflow.WithHistory(store))
				}
			}

			req := workflow.Request{
				SourceDir:     args[0],
				OutputDir:     outDir,
				NoVolumeSplit: noSplit,
			}
			if !jsonOutput {
				req.Progress = newProgressReporter(stderr, tr, interactive).handle
			}

			summary, runErr := workflow.NewRunner(cfg, logger, opts...).Run(cmd.Context(), req)
			if jsonOutput {
				if summary.SourceDir != "" {
					if err := writeJSON(cmd, newPackReport(summary)); err != nil {
						return err
					}
				}
				return runErr
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) && summary.SourceDir == "" {
				return runErr
			}
			printPackSummary(cmd.OutOrStdout(), cfg, tr, summary, shouldColorize(cmd.OutOrStdout()))
			return runErr
		},
	}

	cmd.Flags().IntVar(&maxSize, "max-size", config.DefaultMaxSizeMB, "Maximum archive size in MB")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write archives to this folder instead of the source folder")
	cmd.Flags().BoolVar(&noSplit, "no-split", false, "Do not split oversized archives into volumes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func printPackSummary(out io.Writer, cfg *config.Config, tr *i18n.Translator, summary workflow.Summary, colorize bool) {
	for _, w := range cfg.Warnings {
		fmt.Fprintln(out, renderStatusLine("config", statusWarn, w, colorize))
	}
	if summary.Empty {
		fmt.Fprintln(out, tr.T("msg_no_files", nil))
		return
	}

	if len(summary.Archives) > 0 {
		tbl := newReportTable(
			reportColumn{header: tr.T("table_archive", nil)},
			reportColumn{header: tr.T("table_members", nil), numeric: true},
			reportColumn{header: tr.T("table_size", nil), numeric: true},
			reportColumn{header: tr.T("table_action", nil)},
		)
		var members int
		var size int64
		for _, g := range summary.Archives {
			action := tr.T("normal", nil)
			if g.Oversized {
				action = tr.T("split_zip", nil)
			}
			if len(g.Volumes) > 0 {
				action += " (" + strconv.Itoa(len(g.Volumes)) + ")"
			}
			tbl.addRow(g.Name, strconv.Itoa(len(g.Members)), formatMB(g.Size), action)
			members += len(g.Members)
			size += g.Size
		}
		if len(summary.Archives) > 1 {
			tbl.setTotals(tr.T("table_total", nil), strconv.Itoa(members), formatMB(size))
		}
		fmt.Fprintln(out, tbl.render())
	}

	for _, s := range summary.Splits {
		msg := fmt.Sprintf("%s -> %s, %s", filepath.Base(s.Source), filepath.Base(s.Left), filepath.Base(s.Right))
		fmt.Fprintln(out, renderStatusLine(tr.T("split_mono", nil), statusInfo, msg, colorize))
	}

	if summary.Cancelled {
		fmt.Fprintln(out, tr.T("msg_cancelled", i18n.Params{"count": len(summary.Archives)}))
	} else {
		fmt.Fprintln(out, tr.T("msg_finished", i18n.Params{"count": len(summary.Archives)}))
	}

	for _, g := range summary.Oversized() {
		msg := fmt.Sprintf("%s is %s MB, above the %s MB limit", g.Name, formatMB(g.Size), formatMB(summary.CapacityBytes))
		fmt.Fprintln(out, renderStatusLine(tr.T("split_zip", nil), statusWarn, msg, colorize))
	}

	if len(summary.Warnings) > 0 {
		fmt.Fprintln(out, tr.T("msg_warnings", i18n.Params{"count": len(summary.Warnings)}))
		for _, w := range summary.Warnings {
			msg := w.Error()
			if packerr.Recoverable(w) {
				msg += " (" + packerr.Hint(w) + ")"
			}
			fmt.Fprintln(out, renderStatusLine(warningLabel(w), statusWarn, strings.TrimSpace(msg), colorize))
		}
	}
}
