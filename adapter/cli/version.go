package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

func init() {
	AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the gala version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gala %s\n", Version)
		},
	})
}
