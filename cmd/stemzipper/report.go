package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"stemzipper/internal/packerr"
	"stemzipper/internal/workflow"
)

type archiveReport struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	SizeBytes int64    `json:"size_bytes"`
	Members   []string `json:"members"`
	Volumes   []string `json:"volumes,omitempty"`
	Oversized bool     `json:"oversized"`
}

type splitReport struct {
	Source string `json:"source"`
	Left   string `json:"left"`
	Right  string `json:"right"`
}

type warningReport struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

type packReport struct {
	RunID         string          `json:"run_id"`
	SourceDir     string          `json:"source_dir"`
	OutputDir     string          `json:"output_dir"`
	CapacityBytes int64           `json:"capacity_bytes"`
	Files         int             `json:"files"`
	Empty         bool            `json:"empty"`
	Cancelled     bool            `json:"cancelled"`
	DurationMS    int64           `json:"duration_ms"`
	Archives      []archiveReport `json:"archives"`
	Splits        []splitReport   `json:"splits"`
	Warnings      []warningReport `json:"warnings"`
}

func newPackReport(summary workflow.Summary) packReport {
	report := packReport{
		RunID:         summary.RunID,
		SourceDir:     summary.SourceDir,
		OutputDir:     summary.OutputDir,
		CapacityBytes: summary.CapacityBytes,
		Files:         summary.FileCount,
		Empty:         summary.Empty,
		Cancelled:     summary.Cancelled,
		DurationMS:    summary.Duration.Milliseconds(),
		Archives:      []archiveReport{},
		Splits:        []splitReport{},
		Warnings:      []warningReport{},
	}
	for _, g := range summary.Archives {
		report.Archives = append(report.Archives, archiveReport{
			Name:      g.Name,
			Path:      g.Path,
			SizeBytes: g.Size,
			Members:   g.Members,
			Volumes:   g.Volumes,
			Oversized: g.Oversized,
		})
	}
	for _, s := range summary.Splits {
		report.Splits = append(report.Splits, splitReport{
			Source: filepath.Base(s.Source),
			Left:   filepath.Base(s.Left),
			Right:  filepath.Base(s.Right),
		})
	}
	for _, w := range summary.Warnings {
		report.Warnings = append(report.Warnings, warningReport{Message: w.Error(), Hint: packerr.Hint(w)})
	}
	return report
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
