package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/meshcache/internal/app"
	"go.trai.ch/meshcache/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [shape files...]",
		Short: "Reconstruct a mesh for every shape file and write it as STL",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			flags := readCommonFlags(cmd)

			stats, err := c.app.Build(cmd.Context(), args, app.BuildOptions{
				ConfigPath: flags.config,
				OutDir:     flags.out,
				Jobs:       flags.jobs,
			})
			if flags.stats && (err == nil || errors.Is(err, domain.ErrBuildFailed)) {
				writeSummary(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
}
