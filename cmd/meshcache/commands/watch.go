package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/meshcache/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Serve mesh requests from stdin and reload settings on change",
		Long: `Reads one request per line from stdin. The first shape file on a line is
meshed and written as STL; any further shape files on the same line are warmed
in the background. The settings file is watched and the mesh cache is
invalidated whenever the pipeline preferences change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := readCommonFlags(cmd)

			stats, err := c.app.Watch(cmd.Context(), app.WatchOptions{
				ConfigPath: flags.config,
				OutDir:     flags.out,
				Jobs:       flags.jobs,
			})
			if err != nil {
				return err
			}
			if flags.stats {
				writeSummary(cmd.ErrOrStderr(), stats)
			}
			return nil
		},
	}
}
