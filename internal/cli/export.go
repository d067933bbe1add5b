package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/sheet-exporter/internal/destination"
	"github.com/handiism/sheet-exporter/internal/export"
	ioutils "github.com/handiism/sheet-exporter/internal/io"
	"github.com/handiism/sheet-exporter/internal/plan"
	"github.com/handiism/sheet-exporter/internal/register"
	"github.com/handiism/sheet-exporter/internal/status"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview what an export would produce",
		Long: `Plan the export of the current selection and list one row per
sheet and format with the file name it would get.`,
		Example: `  # Preview the export
  sheet-export plan --model model.yaml

  # Print the plan as JSON
  sheet-export plan --model model.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}

			p, items, err := buildPlan(cmd.Context(), host, app.Store, app.Logger)
			if err != nil {
				return err
			}
			if asJSON {
				data, err := p.JSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			renderPreview(cmd.OutOrStdout(), p, items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		asJSON       bool
		verbose      bool
		registerPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected collections",
		Long: `Export every selected collection to PDF and, where requested, DWG.

Progress goes to stderr; the report goes to stdout. The command fails when
any output failed.`,
		Example: `  # Export with the saved selection
  sheet-export export --model model.yaml

  # Machine-readable report
  sheet-export export --model model.yaml --json

  # Also write a drawing register (.csv, .md or .json)
  sheet-export export --model model.yaml --register register.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}

			p, _, err := buildPlan(cmd.Context(), host, app.Store, app.Logger)
			if err != nil {
				return err
			}
			if len(p.Exported()) == 0 {
				return errors.New("nothing to export: no collection has the include parameter set")
			}

			stderr := cmd.ErrOrStderr()
			o := export.New(host, app.Store,
				export.WithSink(status.LogSink(app.Logger)),
				export.WithProgress(func(current, total int, message string) {
					fmt.Fprintf(stderr, "[%d/%d] %s\n", current, total, message)
				}),
				export.WithNotices(func(n export.Notice) {
					if n.Level == export.LevelVerbose && !verbose {
						return
					}
					fmt.Fprintf(stderr, "%s: %s\n", n.Level, n.Message)
				}),
				export.WithLogger(app.Logger),
			)

			report, err := o.Run(cmd.Context(), p)
			if report != nil && registerPath != "" {
				if rerr := writeRegister(registerPath, report, p, destination.New(app.Store, app.Logger).Root()); rerr != nil {
					return rerr
				}
			}
			if report != nil {
				if asJSON {
					if jerr := renderJSON(cmd.OutOrStdout(), report); jerr != nil {
						return jerr
					}
				} else {
					renderReport(cmd.OutOrStdout(), report)
				}
			}
			if err != nil {
				return err
			}
			if failures := report.Failures(); len(failures) > 0 {
				return fmt.Errorf("%d output(s) failed, first: %s", len(failures), failures[0].Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose notices")
	cmd.Flags().StringVar(&registerPath, "register", "", "Write a drawing register of the run to this file")
	return cmd
}

func writeRegister(path string, report *export.Report, p *plan.Plan, root string) error {
	content, err := register.NewCreator(register.FormatFor(path)).Create(register.Build(report, p, root))
	if err != nil {
		return err
	}
	if err := ioutils.WriteFileAtomic(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write register: %w", err)
	}
	return nil
}
