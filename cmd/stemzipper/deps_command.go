package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"stemzipper/internal/archive"
	"stemzipper/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external archivers used for volume splitting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			statuses := deps.CheckBinaries(deps.Requirements(runtime.GOOS, cfg.Volumes))
			for _, s := range statuses {
				kind := statusOK
				message := s.Path
				switch {
				case !s.Available && s.Optional:
					kind = statusWarn
					message = s.Detail + " (optional)"
				case !s.Available:
					kind = statusError
					message = s.Detail
				}
				fmt.Fprintln(out, renderStatusLine(s.Name, kind, message, colorize))
				if s.Description != "" {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, "", s.Description)
				}
			}

			splitter := archive.DetectSplitter(runtime.GOOS, cfg.Volumes)
			switch {
			case !cfg.Volumes.Enabled:
				fmt.Fprintln(out, renderStatusLine("Volumes", statusInfo, "disabled in configuration", colorize))
			case splitter == nil:
				fmt.Fprintln(out, renderStatusLine("Volumes", statusWarn, "no splitter available; oversized archives stay intact", colorize))
			default:
				fmt.Fprintln(out, renderStatusLine("Volumes", statusOK, "using "+splitter.Name(), colorize))
			}

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintf(out, "%d required dependency missing\n", len(missing))
			}
			return nil
		},
	}
}
