// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/routing"
)

// PromptConfig lets the user edit the main settings of cfg in place. The
// current values are offered as defaults.
func PromptConfig(cfg *config.Config) error {
	requiredEnv := strings.Join(cfg.Doctor.RequiredEnv, ", ")
	requiredTiers := strings.Join(cfg.Doctor.RequiredTiers, ", ")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Skill Publishing").
				Description("Paths are relative to the repository root."),

			huh.NewInput().
				Title("Active skill declaration").
				Value(&cfg.Paths.Declaration).
				Validate(requirePath),

			huh.NewInput().
				Title("Publish destination").
				Value(&cfg.Paths.Destination).
				Validate(requirePath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Router config").
				Value(&cfg.Paths.RouterConfig).
				Validate(requirePath),

			huh.NewInput().
				Title("Required router tiers (comma-separated)").
				Value(&requiredTiers).
				Validate(func(s string) error {
					if len(parseList(s)) == 0 {
						return fmt.Errorf("at least one tier is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Model route probe (TASK/COMPLEXITY)").
				Value(&cfg.Doctor.ModelRouteProbe).
				Validate(validateProbe),

			huh.NewInput().
				Title("MCP route probe (TASK/COMPLEXITY)").
				Value(&cfg.Doctor.MCPRouteProbe).
				Validate(validateProbe),

			huh.NewInput().
				Title("Environment variables to check (comma-separated, optional)").
				Value(&requiredEnv),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}

	cfg.Doctor.RequiredTiers = parseList(requiredTiers)
	cfg.Doctor.RequiredEnv = parseList(requiredEnv)
	if cfg.Doctor.RequiredEnv == nil {
		cfg.Doctor.RequiredEnv = []string{}
	}
	return nil
}

// ConfirmOverwrite asks before replacing an existing config file.
func ConfirmOverwrite(path string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing Configuration Found").
				Description(path),

			huh.NewConfirm().
				Title("Overwrite it?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func requirePath(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

func validateProbe(s string) error {
	_, err := routing.ParseProbe(s)
	return err
}

func parseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
