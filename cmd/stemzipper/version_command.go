package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stemzipper/internal/archive"
	"stemzipper/internal/i18n"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := ctx.translator()
			fmt.Fprintln(cmd.OutOrStdout(), tr.T("about_text", i18n.Params{"version": archive.Version}))
			return nil
		},
	}
}
