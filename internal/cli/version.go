package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.jsonOutput {
				return c.outputJSON(map[string]string{
					"version":    Version,
					"git_commit": GitCommit,
					"build_date": BuildDate,
				})
			}
			c.printf("tokenops %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
