// Package commands implements the CLI commands for meshcache.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/meshcache/internal/app"
	"go.trai.ch/meshcache/internal/build"
	"go.trai.ch/meshcache/internal/core/domain"
)

// CLI represents the command line interface for meshcache.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, shapePaths []string, opts app.BuildOptions) (domain.Stats, error)
	Watch(ctx context.Context, opts app.WatchOptions) (domain.Stats, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "meshcache",
		Short:         "Reconstruct, cache and export surface meshes from correspondence shapes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Settings file (default \"meshcache.yaml\")")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Number of reconstruction workers (overrides settings)")
	rootCmd.PersistentFlags().StringP("out", "o", "", "Directory for STL output (default: next to each shape)")
	rootCmd.PersistentFlags().Bool("stats", true, "Print cache statistics when done")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

type commonFlags struct {
	config string
	jobs   int
	out    string
	stats  bool
}

func readCommonFlags(cmd *cobra.Command) commonFlags {
	config, _ := cmd.Flags().GetString("config")
	jobs, _ := cmd.Flags().GetInt("jobs")
	out, _ := cmd.Flags().GetString("out")
	stats, _ := cmd.Flags().GetBool("stats")
	return commonFlags{config: config, jobs: jobs, out: out, stats: stats}
}
