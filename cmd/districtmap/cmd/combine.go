package cmd

import (
	"encoding/csv"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/pkg/errors"
)

// NewCombineCommand creates the combine command.
func NewCombineCommand(appCtx appcontext.Interface) *cobra.Command {
	var (
		outPath   string
		onlyState string
	)

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Combine district calendar files into one labeled CSV",
		Long: `Combine flattens the calendar tree into a single CSV, labeling each
row with its state and district codes. With --state only that state's
files are combined.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree := appCtx.Tree()

			states, err := tree.States()
			if err != nil {
				return err
			}
			if onlyState != "" {
				states = []string{onlyState}
			}

			f, err := os.Create(outPath)
			if err != nil {
				return errors.WrapIO("create", outPath, err)
			}
			defer f.Close()
			w := csv.NewWriter(f)

			var header []string
			total := 0
			for _, state := range states {
				stems, err := tree.Districts(state)
				if err != nil {
					return err
				}
				for _, stem := range stems {
					n, h, err := appendDistrict(w, &header, tree.Path(state, stem), state, stem)
					if err != nil {
						return err
					}
					header = h
					total += n
				}
			}

			w.Flush()
			if err := w.Error(); err != nil {
				return errors.WrapIO("write", outPath, err)
			}
			appCtx.Logger().Info().
				Int("rows", total).
				Str("out", outPath).
				Msg("Combined district calendars")
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "data/combined_calendars.csv", "combined output CSV")
	cmd.Flags().StringVar(&onlyState, "state", "", "combine only this state folder")
	return cmd
}

// appendDistrict writes one calendar file's rows, labeled with the state
// and district identifiers. The first file seen fixes the column order.
func appendDistrict(w *csv.Writer, header *[]string, path, state, district string) (int, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, *header, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	fileHeader, rows, err := schema.ReadCSVWithHeader(f, path)
	if err != nil {
		return 0, *header, err
	}
	if len(rows) == 0 {
		return 0, *header, nil
	}

	h := *header
	if h == nil {
		h = append([]string{"state", "district"}, fileHeader...)
		if err := w.Write(h); err != nil {
			return 0, h, errors.WrapIO("write", path, err)
		}
	}

	for _, row := range rows {
		out := make([]string, 0, len(h))
		out = append(out, state, district)
		for _, col := range h[2:] {
			out = append(out, row[col])
		}
		if err := w.Write(out); err != nil {
			return 0, h, errors.WrapIO("write", path, err)
		}
	}
	return len(rows), h, nil
}
