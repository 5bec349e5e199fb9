package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/cmd/output"
	"github.com/districtmap/districtmap/pkg/rename"
)

// NewRenameCommand creates the rename command.
func NewRenameCommand(appCtx appcontext.Interface) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename textual state folders and district files to numeric codes",
		Long: `Rename resolves every textual folder and file name in the calendar
tree against the code book and converts them to zero-padded numeric codes.

Two files resolving to the same code merge, with duplicate rows dropped.
Without --apply the planned operations are printed and nothing on disk
changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolver, err := appCtx.Resolver()
			if err != nil {
				return err
			}
			renamer, err := rename.New(appCtx.Tree(), resolver, appCtx.Logger())
			if err != nil {
				return err
			}

			plan, err := renamer.Plan()
			if err != nil {
				return err
			}

			formatter := output.NewFormatter(output.DetectFormat(appCtx.OutputFormat()))
			if !apply {
				appCtx.Logger().Info().
					Int("ops", len(plan.Ops)).
					Msg("Dry run; re-run with --apply to perform these changes")
				return formatter.Format(os.Stdout, plan)
			}

			result, err := renamer.Apply(plan)
			if err != nil {
				return err
			}
			return formatter.Format(os.Stdout, result)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "perform the renames and merges")
	return cmd
}
