package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/cmd/districtmap/cmd"
)

// Execute runs the districtmap CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "districtmap",
		Short:   "Reconcile noisy Indian state and district names against census codes",
		Version: a.version,
		Long: `Districtmap reconciles scraped, inconsistently spelled state and
district names against the census reference code book.

It validates a scraped calendar tree against the code book, renames
textual folders and files to numeric codes (merging collisions), recovers
missing districts from a GeoNames dump, and flags master-list rows whose
dates appear in their district's calendar.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.districtmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, json, yaml, csv")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.TreeRoot, "root", a.config.TreeRoot, "calendar tree root directory")
	rootCmd.PersistentFlags().StringVar(&a.config.CodeBookPath, "codebook", a.config.CodeBookPath, "reference code book CSV")
	rootCmd.PersistentFlags().StringVar(&a.config.AliasesPath, "aliases", a.config.AliasesPath, "alias table YAML")

	rootCmd.SetVersionTemplate("districtmap {{.Version}}\n")

	rootCmd.AddCommand(cmd.NewCheckCommand(a))
	rootCmd.AddCommand(cmd.NewRenameCommand(a))
	rootCmd.AddCommand(cmd.NewRecoverCommand(a))
	rootCmd.AddCommand(cmd.NewMergeCommand(a))
	rootCmd.AddCommand(cmd.NewCodeCommand(a))
	rootCmd.AddCommand(cmd.NewCombineCommand(a))

	return rootCmd
}

// setupCommand rebuilds the logger after cobra has parsed the flags, so
// -v/-q/--log-level take effect.
func (a *App) setupCommand(_ *cobra.Command, _ []string) error {
	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}
