package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/cmd/output"
	"github.com/districtmap/districtmap/internal/dates"
	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/coding"
	"github.com/districtmap/districtmap/pkg/errors"
)

// codeSummary is the printable outcome of one coding pass.
type codeSummary struct {
	Total           int `json:"total"`
	Auspicious      int `json:"auspicious"`
	NotAuspicious   int `json:"not_auspicious"`
	UnparsableDates int `json:"unparsable_dates"`
	Unresolved      int `json:"unresolved"`
	MissingFiles    int `json:"missing_files"`
}

// NewCodeCommand creates the code command.
func NewCodeCommand(appCtx appcontext.Interface) *cobra.Command {
	var (
		datesPath string
		outPath   string
		dryRun    bool
		diagnose  bool
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Flag master-list rows whose date appears in their district calendar",
		Long: `Code reads the master dates list, resolves each row's state and
district to numeric codes, and flags the row as auspicious when its date
appears in that district's calendar file.

State and district fields already carrying numeric codes pass through
unresolved; textual names go through the full alias, exact, fuzzy chain.
With --diagnose, per-district hit rates and per-year coverage print too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header, rows, err := readMaster(datesPath)
			if err != nil {
				return err
			}
			mapping := schema.DefaultMapping()
			recs, err := mapping.Apply(rows)
			if err != nil {
				return err
			}

			inputs, unresolvedRows, err := resolveInputs(appCtx, recs)
			if err != nil {
				return err
			}

			coder, err := coding.New(appCtx.Tree(),
				store.NewDateCache(mapping), appCtx.Logger())
			if err != nil {
				return err
			}
			outcome, err := coder.Code(inputs)
			if err != nil {
				return err
			}

			formatter := output.NewFormatter(output.DetectFormat(appCtx.OutputFormat()))
			summary := codeSummary{
				Total:           outcome.Total,
				Auspicious:      outcome.Auspicious,
				NotAuspicious:   outcome.Total - outcome.Auspicious,
				UnparsableDates: outcome.UnparsableDates,
				Unresolved:      unresolvedRows,
				MissingFiles:    len(outcome.MissingFiles),
			}
			if err := formatter.Format(os.Stdout, summary); err != nil {
				return err
			}
			if diagnose {
				if err := formatter.Format(os.Stdout, outcome.HitRates()); err != nil {
					return err
				}
				if err := formatter.Format(os.Stdout, outcome.Years()); err != nil {
					return err
				}
			}

			if dryRun || outPath == "" {
				return nil
			}
			return writeCoded(outPath, header, rows, outcome.Flags)
		},
	}

	cmd.Flags().StringVar(&datesPath, "dates", "data/dates.csv", "master dates CSV")
	cmd.Flags().StringVar(&outPath, "out", "data/dates-coded.csv", "output CSV with the auspicious flag column")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and report without writing the output file")
	cmd.Flags().BoolVar(&diagnose, "diagnose", false, "print per-district hit rates and year coverage")
	return cmd
}

func readMaster(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return schema.ReadCSVWithHeader(f, path)
}

// resolveInputs converts typed master records to coded inputs. Numeric
// fields pass straight through zero-padded; names resolve through the
// full chain. Rows that fail to resolve still produce an input (with
// empty codes, flagged missing) so flags stay aligned with rows.
func resolveInputs(appCtx appcontext.Interface, recs []schema.Record) ([]coding.Input, int, error) {
	resolver, err := appCtx.Resolver()
	if err != nil {
		return nil, 0, err
	}

	inputs := make([]coding.Input, 0, len(recs))
	unresolved := 0
	for _, rec := range recs {
		in := coding.Input{ISODate: rec.ISODate}

		if s, d, ok := numericPair(rec.State, rec.District); ok {
			in.StateCode, in.DistrictCode = s, d
		} else {
			res := resolver.Resolve(rec.State, rec.District)
			if code, ok := res.Code(); ok {
				in.StateCode = code[:2]
				in.DistrictCode = code[3:]
			} else {
				unresolved++
			}
		}
		inputs = append(inputs, in)
	}
	return inputs, unresolved, nil
}

// numericPair reports whether both fields already carry numeric codes,
// returning them zero-padded. Float-rendered codes ("7.0") count.
func numericPair(state, district string) (string, string, bool) {
	s, d := dates.Number(state), dates.Number(district)
	if s < 1 || s > 99 || d < 1 || d > 99 {
		return "", "", false
	}
	return fmt.Sprintf("%02d", s), fmt.Sprintf("%02d", d), true
}

func writeCoded(path string, header []string, rows []map[string]string, flags []bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, header...), "Auspicious_date")); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for i, row := range rows {
		out := make([]string, 0, len(header)+1)
		for _, h := range header {
			out = append(out, row[h])
		}
		flag := "0"
		if i < len(flags) && flags[i] {
			flag = "1"
		}
		out = append(out, flag)
		if err := w.Write(out); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
