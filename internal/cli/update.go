package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/sheet-exporter/internal/export"
	httpclient "github.com/handiism/sheet-exporter/internal/http"
	"github.com/handiism/sheet-exporter/internal/update"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sheet-export %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Build date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
		},
	}
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for a newer release",
		Long: `Fetch the release manifest at update_url and report whether a newer
version exists. With --download the release is saved to a directory and its
checksum verified.`,
		Example: `  sheet-export update --update-url https://example.com/sheet-export/latest.json
  sheet-export update --download ~/Downloads`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := GetApp(cmd.Context())
			if app.Config.UpdateURL == "" {
				return fmt.Errorf("%w: no update_url configured", export.ErrConfigMissing)
			}

			client := httpclient.NewClient(httpclient.WithUserAgent("sheet-export/" + Version))
			checker := update.NewChecker(client, app.Config.UpdateURL, Version, app.Logger)
			rel, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !rel.Available {
				fmt.Fprintf(out, "sheet-export %s is up to date (latest %s)\n", rel.Current, rel.Version)
				return nil
			}
			fmt.Fprintf(out, "sheet-export %s is available (current %s)\n", rel.Version, rel.Current)
			if rel.Notes != "" {
				fmt.Fprintln(out, rel.Notes)
			}

			if dir == "" {
				return nil
			}
			stderr := cmd.ErrOrStderr()
			path, err := checker.Download(cmd.Context(), rel, dir, func(written, total int64) {
				if total > 0 {
					fmt.Fprintf(stderr, "\r%3d%%", written*100/total)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "downloaded %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "download", "d", "", "Download the release into this directory")
	return cmd
}
