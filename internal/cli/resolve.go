package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/skills"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "List the declared skill set",
	Long: `Resolve the active skill declaration and list each skill with its source
directory, whether it can be published, and the description from its SKILL.md
front matter.

Example:
  swarmctl resolve`,
	Args: cobra.NoArgs,
	RunE: resolveSkills,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func resolveSkills(cmd *cobra.Command, args []string) error {
	layout, _, err := loadLayout()
	if err != nil {
		return err
	}
	return runResolve(cmd.OutOrStdout(), layout)
}

func runResolve(out io.Writer, layout config.Layout) error {
	specs, err := skills.ResolveFile(layout.Declaration, layout.Root)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-24s %-40s %-8s %s\n", "NAME", "SOURCE", "STATUS", "DESCRIPTION")
	broken := 0
	for _, spec := range specs {
		status := "ok"
		description := ""
		if err := spec.Validate(); err != nil {
			status = "invalid"
			description = err.Error()
			broken++
		} else if meta, err := skills.ReadMetadata(spec.Source); err != nil {
			description = err.Error()
		} else {
			description = meta.Description
		}
		fmt.Fprintf(out, "%-24s %-40s %-8s %s\n", spec.Name, layout.Rel(spec.Source), status, description)
	}

	if broken > 0 {
		return fmt.Errorf("%d of %d declared skills cannot be published", broken, len(specs))
	}
	return nil
}
