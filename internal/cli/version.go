package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andywolf/swarmctl/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the swarmctl version",
	Long: `Print the swarmctl release. With --verbose, also print the commit and
build date stamped into the binary, plus the Go toolchain and platform.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		line := version.Info()
		if verbose {
			line = version.Full()
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), line)
		return err
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "include commit, build date, Go version and platform")
	rootCmd.AddCommand(versionCmd)
}
