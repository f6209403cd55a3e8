package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/doctor"
)

// doctorExitCode is returned when the doctor reports any finding.
const doctorExitCode = 2

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the published skill set and routing configuration",
	Long: `Check the repository for drift without modifying anything.

Every problem is printed as a FAIL line and the command exits with status 2.
Missing optional environment, such as OPENROUTER_API_KEY, is printed as a WARN
line and does not fail the run.

Example:
  swarmctl doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctorCmd,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctorCmd(cmd *cobra.Command, args []string) error {
	layout, cfg, err := loadLayout()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	return runDoctor(cmd.OutOrStdout(), cmd.ErrOrStderr(), layout, logger, nil)
}

// runDoctor checks layout and prints the report. lookupEnv may be nil.
func runDoctor(out, errOut io.Writer, layout config.Layout, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	opts := []doctor.Option{doctor.WithLogger(logger)}
	if lookupEnv != nil {
		opts = append(opts, doctor.WithLookupEnv(lookupEnv))
	}
	checker, err := doctor.New(layout, opts...)
	if err != nil {
		return err
	}

	report := checker.Check()
	printReport(out, errOut, report)
	if !report.Healthy() {
		return &ExitError{
			Code: doctorExitCode,
			Err:  fmt.Errorf("doctor found %d problem(s)", len(report.Findings)),
		}
	}
	return nil
}

func printReport(out, errOut io.Writer, report *doctor.Report) {
	warn := color.New(color.FgYellow, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()

	for _, w := range report.Warnings {
		fmt.Fprintf(errOut, "%s %s\n", warn("WARN:"), w)
	}
	for _, f := range report.Findings {
		fmt.Fprintf(errOut, "%s %s\n", fail("FAIL:"), f.Message)
	}
	if report.Healthy() {
		fmt.Fprintf(out, "%s doctor passed\n", ok("OK:"))
	}
}
