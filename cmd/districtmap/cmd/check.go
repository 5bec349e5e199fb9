// Package cmd implements the districtmap subcommands. Commands take their
// dependencies through the appcontext interface and shape their results
// for the shared output formatter.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/cmd/output"
	"github.com/districtmap/districtmap/pkg/check"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(appCtx appcontext.Interface) *cobra.Command {
	var mismatchesOnly bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the calendar tree against the code book",
		Long: `Check verifies that every (state, district) pair in the reference
code book has a calendar file in the tree. State folders resolve by alias,
exact canonical name, then fuzzy match; district files that only come
close are reported separately from outright misses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := appCtx.Book()
			if err != nil {
				return err
			}
			resolver, err := appCtx.Resolver()
			if err != nil {
				return err
			}

			checker, err := check.New(appCtx.Tree(),
				check.WithThresholds(resolver.Thresholds()),
				check.WithLogger(appCtx.Logger()),
			)
			if err != nil {
				return err
			}
			report, err := checker.Run(book)
			if err != nil {
				return err
			}

			findings := report.Findings
			if mismatchesOnly {
				findings = report.Mismatches()
			}

			formatter := output.NewFormatter(output.DetectFormat(appCtx.OutputFormat()))
			if len(findings) == 0 {
				return formatter.Format(os.Stdout, report)
			}
			return formatter.Format(os.Stdout, findings)
		},
	}

	cmd.Flags().BoolVar(&mismatchesOnly, "mismatches-only", false, "report only hard misses, not close matches")
	return cmd
}
