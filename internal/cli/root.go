// Package cli provides the command-line interface for sheet-export.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/export"
	"github.com/handiism/sheet-exporter/internal/logging"
	"github.com/handiism/sheet-exporter/internal/snapshot"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// appKey is used to store the App in context.
type appKey struct{}

// App is the per-invocation state shared by commands.
type App struct {
	Config *config.AppConfig
	Logger *zap.Logger
	Store  *config.KV

	host *snapshot.Host
}

// Host opens the model snapshot named by the configuration on first use.
func (a *App) Host() (*snapshot.Host, error) {
	if a.host != nil {
		return a.host, nil
	}
	if a.Config.Model == "" {
		return nil, fmt.Errorf("%w: no model snapshot (set --model or %sMODEL)", export.ErrConfigMissing, config.EnvPrefix)
	}
	host, err := snapshot.Open(a.Config.Model, snapshot.WithLogger(a.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	a.host = host
	return host, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sheet-export",
		Short: "sheet-export - batch export of model sheets",
		Long: `sheet-export exports the sheets of a building model to PDF and DWG.

Collections are selected through three Yes/No parameters: one to include a
collection, one to export it sheet by sheet instead of as a combined PDF,
and one to add DWG output. File names come from configurable patterns.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadApp(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel, cfg.Env)
			if err != nil {
				return err
			}

			store, err := config.Open(cfg.Settings, config.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to open settings: %w", err)
			}

			app := &App{Config: cfg, Logger: logger, Store: store}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app, ok := cmd.Context().Value(appKey{}).(*App); ok {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.AppFileName+")")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding settings and profiles")
	rootCmd.PersistentFlags().String("settings", "", "Path to the settings file")
	rootCmd.PersistentFlags().String("profiles", "", "Path to the profile file")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Path to the model snapshot (YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("env", "", "Environment name (development|production)")
	rootCmd.PersistentFlags().String("update-url", "", "Release manifest URL")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewParamsCommand())
	rootCmd.AddCommand(NewSelectCommand())
	rootCmd.AddCommand(NewSetupsCommand())
	rootCmd.AddCommand(NewProfileCommand())
	rootCmd.AddCommand(NewDestCommand())
	rootCmd.AddCommand(NewPatternCommand())
	rootCmd.AddCommand(NewRenameCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command, cancelling on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if kind := export.Kind(err); kind != export.KindOther && kind != export.KindNone {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
		} else if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// GetApp retrieves the App from the command context.
func GetApp(ctx context.Context) *App {
	if a, ok := ctx.Value(appKey{}).(*App); ok {
		return a
	}
	return &App{Config: &config.AppConfig{}, Logger: zap.NewNop(), Store: config.NewMemory()}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sheet-export.

To load completions:

Bash:
  $ source <(sheet-export completion bash)

Zsh:
  $ sheet-export completion zsh > "${fpath[1]}/_sheet-export"

Fish:
  $ sheet-export completion fish | source

PowerShell:
  PS> sheet-export completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
