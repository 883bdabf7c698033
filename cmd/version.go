package cmd

import (
	clickgate "github.com/clickgate-io/clickgate"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Long:  `Print the version with a short commit hash.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("clickgate %s (%s)\n", clickgate.VERSION, clickgate.COMMIT)
		},
	}
}
