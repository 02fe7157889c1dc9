package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:              "version",
		Short:            "Print the version number of kindlechess",
		Long:             `All software has versions. This is kindlechess's.`,
		PersistentPreRun: skipSetup,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kindlechess version %s\n", rootCmd.Version)
		},
	}
}
