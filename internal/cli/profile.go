package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/handiism/sheet-exporter/internal/profile"
)

func profileStore(app *App) *profile.Store {
	return profile.New(app.Config.Profiles, app.Store, profile.WithLogger(app.Logger))
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Save and restore named settings profiles",
		Long: `A profile captures the destination, naming, selection and setup
settings under a name. Loading it writes them back.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := profileStore(GetApp(cmd.Context()))
			profiles := store.List()
			active := store.Active()

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Updated", "Keys", "Active"})
			for _, name := range store.Names() {
				p := profiles[name]
				mark := ""
				if name == active {
					mark = "*"
				}
				t.AppendRow(table.Row{name, p.UpdatedAt, len(p.Data), mark})
			}
			t.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the current settings as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := profileStore(GetApp(cmd.Context())).Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile %q saved\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "load <name>",
		Short: "Apply a profile to the current settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := profileStore(GetApp(cmd.Context())).Load(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile %q loaded\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := profileStore(GetApp(cmd.Context())).Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "profile %q deleted\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export-csv <file>",
		Short: "Write the current settings to a key,value CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := profileStore(GetApp(cmd.Context())).ExportCSV(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "settings written to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import-csv <file>",
		Short: "Apply a key,value CSV file to the current settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := profileStore(GetApp(cmd.Context())).ImportCSV(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d setting(s) imported\n", n)
			return nil
		},
	})

	return cmd
}
