package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/destination"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/naming"
	"github.com/handiism/sheet-exporter/internal/setup"
)

func parseFormat(s string) (model.Format, error) {
	switch f := model.Format(strings.ToUpper(s)); f {
	case model.FormatPDF, model.FormatDWG:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (pdf|dwg)", s)
}

func setupKey(format model.Format) string {
	if format == model.FormatDWG {
		return config.KeyDWGSetupName
	}
	return config.KeyPDFSetupName
}

func saveFailed(store *config.KV) error {
	return fmt.Errorf("failed to save settings to %s", store.Path())
}

// NewSetupsCommand creates the setups command group.
func NewSetupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setups",
		Short: "Manage export setups",
		Long: `List, choose and edit export setups. Setups come from the model
(export and print settings) or are user-defined and stored in the settings
file. A user-defined setup shadows a model setup of the same name.`,
	}
	cmd.AddCommand(newSetupsListCommand())
	cmd.AddCommand(newSetupsUseCommand())
	cmd.AddCommand(newSetupsAddCommand())
	cmd.AddCommand(newSetupsDeleteCommand())
	return cmd
}

func newSetupsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [pdf|dwg]",
		Short: "List setups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}
			formats := []model.Format{model.FormatPDF, model.FormatDWG}
			if len(args) == 1 {
				f, err := parseFormat(args[0])
				if err != nil {
					return err
				}
				formats = []model.Format{f}
			}

			reg := setup.New(host, app.Store, app.Logger)
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Format", "Name", "Source", "Active"})
			for _, f := range formats {
				setups, err := reg.List(cmd.Context(), f)
				if err != nil {
					return err
				}
				active := app.Store.Get(setupKey(f), "")
				for _, s := range setups {
					mark := ""
					if strings.EqualFold(s.Name, active) {
						mark = "*"
					}
					t.AppendRow(table.Row{f, s.Name, s.Source, mark})
				}
			}
			t.Render()
			return nil
		},
	}
}

func newSetupsUseCommand() *cobra.Command {
	var separate bool

	cmd := &cobra.Command{
		Use:   "use <pdf|dwg> <name>",
		Short: "Choose the setup used by exports",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			host, err := app.Host()
			if err != nil {
				return err
			}
			format, err := parseFormat(args[0])
			if err != nil {
				return err
			}

			s, err := setup.New(host, app.Store, app.Logger).Find(cmd.Context(), format, args[1])
			if err != nil {
				return err
			}
			ok := app.Store.Set(setupKey(format), s.Name)
			if cmd.Flags().Changed("separate-views") {
				key := config.KeyPDFSeparateViews
				if format == model.FormatDWG {
					key = config.KeyDWGSeparateViews
				}
				ok = config.SetFlag(app.Store, key, separate) && ok
			}
			if !ok {
				return saveFailed(app.Store)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s setup: %s\n", format, s.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&separate, "separate-views", false, "Export views as separate files")
	return cmd
}

func newSetupsAddCommand() *cobra.Command {
	var opts model.ExportOptions

	cmd := &cobra.Command{
		Use:   "add <pdf|dwg> <name>",
		Short: "Add or replace a user-defined setup",
		Long: `Add or replace a user-defined setup. Unknown option values fall back
to their default.`,
		Example: `  sheet-export setups add pdf "A3 Gray" --page-size A3 --colors grayscale --orientation landscape`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			format, err := parseFormat(args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[1])
			if name == "" {
				return fmt.Errorf("setup name is empty")
			}

			// The registry only touches the model when listing.
			reg := setup.New(nil, app.Store, app.Logger)
			opts = setup.Normalize(opts)
			if !reg.SaveCustom(format, name, opts) {
				return saveFailed(app.Store)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s setup %q (%s, %s, %s)\n",
				format, name, opts.PageSize, opts.Orientation, opts.Colors)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.PageSize, "page-size", setup.DefaultPageSize, "Paper size")
	f.StringVar(&opts.Orientation, "orientation", setup.Orientations[0], "Orientation ("+strings.Join(setup.Orientations, "|")+")")
	f.StringVar(&opts.ZoomMode, "zoom", setup.ZoomModes[0], "Zoom mode ("+strings.Join(setup.ZoomModes, "|")+")")
	f.IntVar(&opts.ZoomPercent, "zoom-percent", setup.DefaultZoom, "Zoom in percent")
	f.StringVar(&opts.Placement, "placement", setup.Placements[0], "Placement ("+strings.Join(setup.Placements, "|")+")")
	f.Float64Var(&opts.OffsetX, "offset-x", 0, "Horizontal offset for offset placement")
	f.Float64Var(&opts.OffsetY, "offset-y", 0, "Vertical offset for offset placement")
	f.StringVar(&opts.Colors, "colors", setup.ColorModes[0], "Colors ("+strings.Join(setup.ColorModes, "|")+")")
	f.StringVar(&opts.Processing, "processing", setup.Processings[0], "Processing ("+strings.Join(setup.Processings, "|")+")")
	f.StringVar(&opts.RasterQuality, "raster-quality", setup.RasterQualities[0], "Raster quality")
	f.BoolVar(&opts.HideRefWorkPlanes, "hide-ref-planes", false, "Hide reference and work planes")
	f.BoolVar(&opts.HideUnrefTags, "hide-unref-tags", false, "Hide unreferenced view tags")
	f.BoolVar(&opts.HideCropBoundaries, "hide-crop", false, "Hide crop boundaries")
	f.BoolVar(&opts.HideScopeBoxes, "hide-scope-boxes", false, "Hide scope boxes")
	f.BoolVar(&opts.SeparateViewsFiles, "separate-views", false, "Export views as separate files")
	return cmd
}

func newSetupsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pdf|dwg> <name>",
		Short: "Delete a user-defined setup",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			format, err := parseFormat(args[0])
			if err != nil {
				return err
			}
			if !setup.New(nil, app.Store, app.Logger).DeleteCustom(format, args[1]) {
				return fmt.Errorf("%w: user-defined %s setup %q", setup.ErrSetupUnresolved, format, args[1])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s setup %q\n", format, args[1])
			return nil
		},
	}
}

// NewDestCommand creates the dest command.
func NewDestCommand() *cobra.Command {
	var (
		subfolders  bool
		perFormat   bool
		ensureExist bool
	)

	cmd := &cobra.Command{
		Use:   "dest [path]",
		Short: "Show or change the destination",
		Long: `Show the destination layout, or set the root folder and the
subfolder options. Files land in root[/collection][/FORMAT].`,
		Example: `  sheet-export dest ~/Exports --subfolders --per-format`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			svc := destination.New(app.Store, app.Logger)

			ok := true
			if len(args) == 1 {
				if strings.TrimSpace(args[0]) == "" {
					return fmt.Errorf("%w: empty path", destination.ErrNoDestination)
				}
				ok = svc.SetRoot(args[0]) && ok
			}
			if cmd.Flags().Changed("subfolders") {
				ok = config.SetFlag(app.Store, config.KeyCreateSubfolders, subfolders) && ok
			}
			if cmd.Flags().Changed("per-format") {
				ok = config.SetFlag(app.Store, config.KeySeparateFormatFolders, perFormat) && ok
			}
			if !ok {
				return saveFailed(app.Store)
			}

			if ensureExist {
				if _, err := svc.Preflight(); err != nil {
					return err
				}
			}

			layout := svc.Layout()
			t := newTable(cmd.OutOrStdout())
			t.AppendRow(table.Row{"root", layout.Root})
			t.AppendRow(table.Row{"subfolder per collection", layout.PerCollection})
			t.AppendRow(table.Row{"subfolder per format", layout.PerFormat})
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&subfolders, "subfolders", false, "Create one subfolder per collection")
	cmd.Flags().BoolVar(&perFormat, "per-format", false, "Create one subfolder per format")
	cmd.Flags().BoolVar(&ensureExist, "check", false, "Create the root and fail if it is unusable")
	return cmd
}

func parseKind(s string) (naming.Kind, error) {
	switch k := naming.Kind(strings.ToLower(s)); k {
	case naming.KindSheet, naming.KindSet:
		return k, nil
	}
	return "", fmt.Errorf("unknown pattern %q (sheet|set)", s)
}

// NewPatternCommand creates the pattern command.
func NewPatternCommand() *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "pattern [sheet|set] [pattern]",
		Short: "Show or change the file name patterns",
		Long: `Show both file name patterns, or set one. A pattern is a sequence of
{Parameter} tokens, each with optional literal text around it; sheet names
per-sheet files and set names combined collection files.`,
		Example: `  sheet-export pattern sheet "{Sheet Number}_{Sheet Name}"
  sheet-export pattern set "LOT-{BIP:SHEET_NUMBER}"`,
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd.Context())
			engine := naming.NewEngine(app.Store, naming.WithLegacyRows(legacy), naming.WithLogger(app.Logger))

			kinds := []naming.Kind{naming.KindSheet, naming.KindSet}
			if len(args) > 0 {
				k, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []naming.Kind{k}
			}
			if len(args) == 2 {
				if !engine.SetRows(kinds[0], naming.ParsePattern(args[1])) {
					return saveFailed(app.Store)
				}
			}

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Kind", "Pattern"})
			for _, k := range kinds {
				t.AppendRow(table.Row{k, engine.Pattern(k)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy-rows", false, "Store rows in the legacy text form")
	return cmd
}
