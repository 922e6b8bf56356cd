package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stemzipper/internal/fixtures"
	"stemzipper/internal/i18n"
)

// devModeEnv enables developer-only commands.
const devModeEnv = "STEMZIPPER_DEV"

func newTestdataCommand(ctx *commandContext) *cobra.Command {
	var opts fixtures.Options
	var dev bool

	cmd := &cobra.Command{
		Use:    "testdata <dir>",
		Short:  "Generate dummy audio files for trying out the packer",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := ctx.translator()
			if !dev && os.Getenv(devModeEnv) == "" {
				return errors.New(tr.T("testdata_dev_only", nil))
			}
			if opts.Seed == 0 {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			paths, err := fixtures.Generate(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tr.T("create_testdata_done", i18n.Params{
				"count":  len(paths),
				"folder": args[0],
			}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 20, "Number of files to create")
	cmd.Flags().Float64Var(&opts.MinMB, "min-mb", 2, "Smallest file size in MB")
	cmd.Flags().Float64Var(&opts.MaxMB, "max-mb", 20, "Largest file size in MB")
	cmd.Flags().BoolVar(&opts.StereoWAV, "wav", false, "Write real stereo WAV files")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable developer mode for this invocation")
	return cmd
}
