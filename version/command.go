package version

import (
	"fmt"

	"github.com/jongio/taskport/cliout"
	"github.com/spf13/cobra"
)

// NewCommand creates a version command that displays build information.
// Output follows the global cliout format.
func NewCommand(info *Info) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: fmt.Sprintf("Display %s version information", info.Name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cliout.IsJSON() {
				return cliout.PrintJSON(info)
			}

			if quiet {
				cliout.Plain("%s", info.Version)
				return nil
			}

			cliout.Header(fmt.Sprintf("%s version", info.Name))
			cliout.Label("Version", info.Version)
			cliout.Label("Build Date", info.BuildDate)
			cliout.Label("Git Commit", info.GitCommit)
			cliout.Label("Platform", info.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print version number")
	return cmd
}
