package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stemzipper/internal/config"
	"stemzipper/internal/i18n"
	"stemzipper/internal/packing"
	"stemzipper/internal/scan"
)

type planEntryReport struct {
	File      string `json:"file"`
	SizeBytes int64  `json:"size_bytes"`
	Kind      string `json:"kind"`
	Action    string `json:"action"`
	Stereo    bool   `json:"stereo,omitempty"`
	Lossy     bool   `json:"lossy"`
}

type estimateReport struct {
	Archives      int   `json:"archives"`
	LogicalBytes  int64 `json:"logical_bytes"`
	CapacityBytes int64 `json:"capacity_bytes"`
}

type planReport struct {
	Files    []planEntryReport `json:"files"`
	Counts   map[string]int    `json:"counts"`
	Estimate estimateReport    `json:"estimate"`
}

// loadPlan scans dir and classifies its files against the configured ceiling.
func loadPlan(cfg *config.Config, dir string) ([]scan.PlanEntry, packing.Estimate, error) {
	files, err := scan.Scan(dir, cfg.Packing.Extensions)
	if err != nil {
		return nil, packing.Estimate{}, err
	}
	capacity := cfg.CapacityBytes()
	entries := scan.Plan(files, capacity, cfg.Packing.SplitStereo)
	est := packing.EstimateArchives(scan.EstimateInputs(entries), capacity)
	return entries, est, nil
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var maxSize int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan <dir>",
		Short: "Preview how each file in a folder will be packed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tr := ctx.translator()
			if msg := applyMaxSize(cmd, cfg, tr, maxSize); msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}

			entries, est, err := loadPlan(cfg, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				report := planReport{Files: []planEntryReport{}, Counts: map[string]int{}, Estimate: newEstimateReport(est)}
				for action, n := range scan.Counts(entries) {
					report.Counts[string(action)] = n
				}
				for _, e := range entries {
					report.Files = append(report.Files, planEntryReport{
						File:      filepath.Base(e.File.Path),
						SizeBytes: e.File.Size,
						Kind:      string(e.Kind),
						Action:    string(e.Action),
						Stereo:    e.Stereo,
						Lossy:     e.Kind.Lossy(),
					})
				}
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, tr.T("msg_no_files", nil))
				return nil
			}
			tbl := newReportTable(
				reportColumn{header: tr.T("table_file", nil)},
				reportColumn{header: tr.T("table_size", nil), numeric: true},
				reportColumn{header: tr.T("table_kind", nil)},
				reportColumn{header: tr.T("table_action", nil)},
			)
			var total int64
			for _, e := range entries {
				tbl.addRow(filepath.Base(e.File.Path), formatMB(e.File.Size), string(e.Kind), tr.T(string(e.Action), nil))
				total += e.File.Size
			}
			tbl.setTotals(tr.T("table_total", nil), formatMB(total))
			fmt.Fprintln(out, tbl.render())
			fmt.Fprintln(out, tr.T("found_files", i18n.Params{"count": len(entries)}))
			counts := scan.Counts(entries)
			for _, action := range []scan.Classification{scan.SplitMono, scan.SplitZip} {
				if counts[action] > 0 {
					fmt.Fprintf(out, "%s: %d\n", tr.T(string(action), nil), counts[action])
				}
			}
			fmt.Fprintln(out, tr.T("msg_estimate", i18n.Params{"count": est.Archives}))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxSize, "max-size", config.DefaultMaxSizeMB, "Maximum archive size in MB")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")
	return cmd
}

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var maxSize int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "estimate <dir>",
		Short: "Estimate how many archives a folder will produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tr := ctx.translator()
			if msg := applyMaxSize(cmd, cfg, tr, maxSize); msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			_, est, err := loadPlan(cfg, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, newEstimateReport(est))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tr.T("msg_estimate", i18n.Params{"count": est.Archives}))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxSize, "max-size", config.DefaultMaxSizeMB, "Maximum archive size in MB")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the estimate as JSON")
	return cmd
}

func newEstimateReport(est packing.Estimate) estimateReport {
	return estimateReport{
		Archives:      est.Archives,
		LogicalBytes:  est.LogicalBytes,
		CapacityBytes: est.CapacityBytes,
	}
}
