package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/cmd/output"
	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/recovery"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand(appCtx appcontext.Interface) *cobra.Command {
	var (
		fromPath string
		intoPath string
		sortRows bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge recovered district rows into the geo index",
		Long: `Merge folds a recovered-districts CSV into the main geo index file.
Rows without a usable GeoNames id and exact (state, district, id)
duplicates are skipped; everything else is appended.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			incoming, err := readRecoveredRows(fromPath)
			if err != nil {
				return err
			}
			existing, err := readGeoIndex(intoPath)
			if err != nil {
				return err
			}

			merged, stats := recovery.MergeRows(existing, incoming)
			if sortRows {
				recovery.SortRows(merged)
			}

			formatter := output.NewFormatter(output.DetectFormat(appCtx.OutputFormat()))
			if dryRun {
				appCtx.Logger().Info().Msg("Dry run; re-run without --dry-run to write the merged index")
				return formatter.Format(os.Stdout, stats)
			}

			if err := writeGeoIndex(intoPath, merged); err != nil {
				return err
			}
			appCtx.Logger().Info().
				Int("added", stats.Added).
				Int("skipped_empty", stats.SkippedEmpty).
				Int("skipped_duplicate", stats.SkippedDuplicate).
				Int("total", stats.Total).
				Str("into", intoPath).
				Msg("Merged rows into geo index")
			return formatter.Format(os.Stdout, stats)
		},
	}

	cmd.Flags().StringVar(&fromPath, "from", "data/recovered_districts.csv", "recovered districts CSV to fold in")
	cmd.Flags().StringVar(&intoPath, "into", "data/districts_geonames.csv", "geo index CSV to merge into")
	cmd.Flags().BoolVar(&sortRows, "sort", false, "sort the merged index by state then district")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report counters without writing")
	return cmd
}

// readRecoveredRows reads a recovery output CSV into mergeable rows. The
// recover command writes matched_state/matched_district columns; plain
// state/district headers are accepted too, for hand-maintained files.
// Unlike the index reader, a missing source file is an error here.
func readRecoveredRows(path string) ([]recovery.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, path)
	if err != nil {
		return nil, err
	}
	out := make([]recovery.Row, 0, len(rows))
	for _, row := range rows {
		state := row["matched_state"]
		if state == "" {
			state = row["state"]
		}
		district := row["matched_district"]
		if district == "" {
			district = row["district"]
		}
		out = append(out, recovery.Row{
			MatchedState:    state,
			MatchedDistrict: district,
			GeonameID:       row["geoname_id"],
		})
	}
	return out, nil
}
