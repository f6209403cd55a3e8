package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:     "publish",
	Aliases: []string{"publish-skills"},
	Short:   "Publish the active skill set",
	Long: `Publish every skill listed in the active skill declaration.

The destination directory is cleared (keep-files such as .gitkeep survive),
each skill tree is copied in, and a manifest with the digest of every copy is
written. Nothing is touched if any declared skill is missing or lacks SKILL.md.

Example:
  swarmctl publish
  swarmctl publish --repo-root ~/src/agent-os`,
	Args: cobra.NoArgs,
	RunE: publishSkills,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func publishSkills(cmd *cobra.Command, args []string) error {
	layout, cfg, err := loadLayout()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	return runPublish(cmd.OutOrStdout(), layout, logger)
}

func runPublish(out io.Writer, layout config.Layout, logger *slog.Logger) error {
	p, err := publish.New(layout, publish.WithLogger(logger))
	if err != nil {
		return err
	}
	m, err := p.PublishDeclared()
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	for _, s := range m.Skills {
		fmt.Fprintf(out, "  %-24s %s\n", s.Name, s.TreeDigest)
	}
	fmt.Fprintf(out, "OK: published %d active skills to %s\n", len(m.Skills), layout.Rel(layout.Destination))
	return nil
}
