package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/treehash"
)

var hashCmd = &cobra.Command{
	Use:   "hash <dir>",
	Short: "Print the tree digest of a directory",
	Long: `Print the tree digest of a directory, computed exactly as publish records it
in the manifest. Cache directories and compiled bytecode are excluded.

Example:
  swarmctl hash .agent/skills/alpha
  swarmctl hash --entries configs/skills/alpha`,
	Args: cobra.ExactArgs(1),
	RunE: hashDir,
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().Bool("entries", false, "also print the digest of every hashed file")
}

func hashDir(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	entries, _ := cmd.Flags().GetBool("entries")
	return runHash(cmd.OutOrStdout(), args[0], cfg.Hash.Exclude, entries)
}

func runHash(out io.Writer, dir string, exclude []string, showEntries bool) error {
	h, err := treehash.New(exclude)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	if showEntries {
		list, err := h.Entries(abs)
		if err != nil {
			return err
		}
		for _, e := range list {
			fmt.Fprintf(out, "%s  %s\n", e.Digest, e.Path)
		}
	}

	digest, err := h.Tree(abs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s  %s\n", digest, dir)
	return nil
}
