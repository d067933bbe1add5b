package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/params"
	"github.com/handiism/sheet-exporter/internal/plan"
)

func parseScope(s string) (model.Scope, error) {
	for _, scope := range params.Scopes {
		if strings.EqualFold(scope.String(), s) {
			return scope, nil
		}
	}
	return 0, fmt.Errorf("unknown scope %q (project|collection|sheet)", s)
}

func parseRole(s string) (params.Role, error) {
	switch strings.ToLower(s) {
	case "flag":
		return params.RoleFlag, nil
	case "naming":
		return params.RoleNaming, nil
	}
	return 0, fmt.Errorf("unknown role %q (flag|naming)", s)
}

// NewParamsCommand creates the params command.
func NewParamsCommand() *cobra.Command {
	var (
		scopeFlag string
		roleFlag  string
		fullScan  bool
		sample    int
	)

	cmd := &cobra.Command{
		Use:   "params",
		Short: "List selectable parameters",
		Long: `List the parameters defined on the project, on collections or on sheets.

The flag role keeps writable Yes/No parameters, the ones usable for the
selection. The naming role keeps every parameter not excluded by the
excluded_sheet_params setting.`,
		Example: `  # Yes/No parameters of collections
  sheet-export params --scope collection

  # Everything usable in a file name pattern, inspecting every sheet
  sheet-export params --scope sheet --role naming --full-scan`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}
			role, err := parseRole(roleFlag)
			if err != nil {
				return err
			}
			scopes := params.Scopes
			if scopeFlag != "" {
				scope, err := parseScope(scopeFlag)
				if err != nil {
					return err
				}
				scopes = []model.Scope{scope}
			}

			repo, err := params.New(host, app.Store,
				params.WithFullScan(fullScan),
				params.WithSampleSize(sample),
				params.WithLogger(app.Logger),
			)
			if err != nil {
				return err
			}
			if err := repo.Warm(cmd.Context(), scopes...); err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Scope", "Parameter", "ID"})
			for _, scope := range scopes {
				choices, err := repo.Choices(cmd.Context(), scope, role)
				if err != nil {
					return err
				}
				for _, c := range choices {
					t.AppendRow(table.Row{scope, c.DisplayName, c.StableID})
				}
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeFlag, "scope", "", "Scope to list (project|collection|sheet); all when empty")
	cmd.Flags().StringVar(&roleFlag, "role", "flag", "Filter (flag|naming)")
	cmd.Flags().BoolVar(&fullScan, "full-scan", false, "Inspect every sheet instead of a sample")
	cmd.Flags().IntVar(&sample, "sample", params.DefaultSampleSize, "Number of sheets inspected without --full-scan")
	return cmd
}

// NewSelectCommand creates the select command.
func NewSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Show or change the selection parameters",
		Long: `Show or change the three Yes/No parameters driving the export: include
marks a collection for export, per-sheet exports it sheet by sheet instead
of as one combined PDF, and dwg adds DWG output.

The three parameters must be distinct.`,
		Example: `  sheet-export select --include Export --per-sheet Carnet --dwg DWG`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			settings := config.LoadSettings(app.Store)

			changed := false
			for flag, target := range map[string]*string{
				"include":   &settings.IncludeParam,
				"per-sheet": &settings.PerSheetParam,
				"dwg":       &settings.DWGParam,
			} {
				if cmd.Flags().Changed(flag) {
					*target, _ = cmd.Flags().GetString(flag)
					changed = true
				}
			}
			if cmd.Flags().Changed("exclude") {
				settings.ExcludedSheetParams, _ = cmd.Flags().GetStringSlice("exclude")
				changed = true
			}

			sel := plan.SelectionFromSettings(settings)
			if changed {
				if err := sel.Validate(); err != nil {
					return err
				}
				saved := settings.Save(app.Store)
				if cmd.Flags().Changed("exclude") {
					saved = app.Store.Set(config.KeyExcludedSheetParams, strings.Join(settings.ExcludedSheetParams, ",")) && saved
				}
				if !saved {
					return fmt.Errorf("failed to save settings to %s", app.Store.Path())
				}
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Role", "Parameter"})
			t.AppendRow(table.Row{"include", sel.Include})
			t.AppendRow(table.Row{"per-sheet", sel.PerSheet})
			t.AppendRow(table.Row{"dwg", sel.DWG})
			t.AppendRow(table.Row{"excluded", strings.Join(settings.ExcludedSheetParams, ", ")})
			t.Render()
			return nil
		},
	}

	cmd.Flags().String("include", "", "Parameter marking a collection for export")
	cmd.Flags().String("per-sheet", "", "Parameter requesting one PDF per sheet")
	cmd.Flags().String("dwg", "", "Parameter requesting DWG output")
	cmd.Flags().StringSlice("exclude", nil, "Parameters hidden from naming choices")
	return cmd
}
