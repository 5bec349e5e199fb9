package cmd

import (
	"encoding/csv"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/cmd/output"
	"github.com/districtmap/districtmap/internal/geonames"
	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/recovery"
)

// NewRecoverCommand creates the recover command.
func NewRecoverCommand(appCtx appcontext.Interface) *cobra.Command {
	var (
		missingPath string
		dumpPath    string
		indexPath   string
		threshold   float64
		apply       bool
	)

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover missing districts from a GeoNames dump",
		Long: `Recover matches a missing-districts list against a GeoNames country
dump: states against the ADM1 pool including alternate names, districts
against the ADM2 pool scoped to the matched state. One output row is
produced per distinct input pair, matched or not.

With --index and --apply, recovered rows merge into the main geo index
file, skipping rows without a usable GeoNames id and exact duplicates.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			queries, err := readQueries(missingPath)
			if err != nil {
				return err
			}

			f, err := os.Open(dumpPath)
			if err != nil {
				return errors.WrapIO("open", dumpPath, err)
			}
			index, err := geonames.Read(f)
			f.Close()
			if err != nil {
				return err
			}

			rec, err := recovery.New(index,
				recovery.WithThreshold(threshold),
				recovery.WithLogger(appCtx.Logger()),
			)
			if err != nil {
				return err
			}
			rows := rec.Run(queries)

			formatter := output.NewFormatter(output.DetectFormat(appCtx.OutputFormat()))
			if indexPath == "" || !apply {
				return formatter.Format(os.Stdout, rows)
			}

			existing, err := readGeoIndex(indexPath)
			if err != nil {
				return err
			}
			merged, stats := recovery.MergeRows(existing, rows)
			if err := writeGeoIndex(indexPath, merged); err != nil {
				return err
			}
			appCtx.Logger().Info().
				Int("added", stats.Added).
				Int("skipped_empty", stats.SkippedEmpty).
				Int("skipped_duplicate", stats.SkippedDuplicate).
				Int("total", stats.Total).
				Msg("Merged recovered districts into geo index")
			return formatter.Format(os.Stdout, stats)
		},
	}

	cmd.Flags().StringVar(&missingPath, "missing", "data/missing_districts.csv", "missing districts CSV (state, district columns)")
	cmd.Flags().StringVar(&dumpPath, "geonames", "data/IN.txt", "GeoNames country dump")
	cmd.Flags().StringVar(&indexPath, "index", "", "main geo index CSV to merge recovered rows into")
	cmd.Flags().Float64Var(&threshold, "threshold", recovery.DefaultThreshold, "acceptance cutoff for state and district matches")
	cmd.Flags().BoolVar(&apply, "apply", false, "write merged rows back to the geo index")
	return cmd
}

func readQueries(path string) ([]recovery.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, path)
	if err != nil {
		return nil, err
	}
	mapping := schema.DefaultMapping()
	recs, err := mapping.Apply(rows)
	if err != nil {
		return nil, err
	}

	out := make([]recovery.Query, 0, len(recs))
	for _, r := range recs {
		out = append(out, recovery.Query{State: r.State, District: r.District})
	}
	return out, nil
}

func readGeoIndex(path string) ([]recovery.GeoRow, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, path)
	if err != nil {
		return nil, err
	}
	out := make([]recovery.GeoRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, recovery.GeoRow{
			State:     row["state"],
			District:  row["district"],
			GeonameID: row["geoname_id"],
		})
	}
	return out, nil
}

func writeGeoIndex(path string, rows []recovery.GeoRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"state", "district", "geoname_id"}); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.State, row.District, row.GeonameID}); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
