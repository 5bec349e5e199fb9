// Package rename converts a calendar tree from textual state and district
// names to numeric census codes. It works in two phases: Plan walks the
// tree and resolves every folder and file against the code book without
// touching disk, Apply performs the planned renames. Two source files that
// resolve to the same code become a merge: the later file's rows fold into
// the earlier one with duplicates dropped, tracked through a merge
// coordinator so the collapse is visible in the outcome.
package rename

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/merge"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// Kind is the type of one planned operation.
type Kind string

const (
	// KindState renames a state folder to its two-digit code.
	KindState Kind = "state"
	// KindDistrict renames a district file to its two-digit code.
	KindDistrict Kind = "district"
	// KindMerge folds a district file into an existing coded file.
	KindMerge Kind = "merge"
)

// Op is one planned filesystem operation.
type Op struct {
	Kind        Kind            `json:"kind"`
	OldPath     string          `json:"old_path"`
	NewPath     string          `json:"new_path"`
	MatchedName string          `json:"matched_name"`
	Score       float64         `json:"score"`
	Verdict     resolve.Verdict `json:"verdict"`
}

// Plan is the full set of operations one pass would perform, plus
// everything it could not place.
type Plan struct {
	Ops []Op `json:"ops"`

	UnmatchedStates    []string            `json:"unmatched_states,omitempty"`
	UnmatchedDistricts map[string][]string `json:"unmatched_districts,omitempty"`
	AlreadyCoded       int                 `json:"already_coded"`
	Skipped            int                 `json:"skipped"`
	Collisions         []string            `json:"collisions,omitempty"`
}

// Result reports what Apply actually did.
type Result struct {
	Renamed           int `json:"renamed"`
	Merged            int `json:"merged"`
	DroppedDuplicates int `json:"dropped_duplicates"`
}

// Renamer plans and applies code renames over one calendar tree.
type Renamer struct {
	tree     *store.Store
	resolver *resolve.Resolver
	logger   zerolog.Logger
}

// New creates a Renamer. The resolver carries the code book, alias table,
// and thresholds; the renamer adds no matching policy of its own.
func New(tree *store.Store, resolver *resolve.Resolver, logger *zerolog.Logger) (*Renamer, error) {
	if tree == nil {
		return nil, &errors.ValidationError{Field: "tree", Message: "tree must not be nil"}
	}
	if resolver == nil {
		return nil, &errors.ValidationError{Field: "resolver", Message: "resolver must not be nil"}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Renamer{tree: tree, resolver: resolver, logger: *logger}, nil
}

var codedName = regexp.MustCompile(`^\d{2}$`)

// Plan resolves every folder and file in the tree and returns the
// operations an Apply would perform. Nothing on disk changes.
func (r *Renamer) Plan() (*Plan, error) {
	states, err := r.tree.States()
	if err != nil {
		return nil, err
	}

	plan := &Plan{UnmatchedDistricts: make(map[string][]string)}

	// Destinations already on disk or claimed by an earlier op; a second
	// claim on the same target becomes a merge.
	claimed := make(map[string]bool)

	for _, stateDir := range states {
		stateCode, ok := r.planState(plan, stateDir, claimed)
		if !ok {
			continue
		}

		stems, err := r.tree.Districts(stateDir)
		if err != nil {
			return nil, err
		}
		for _, stem := range stems {
			r.planDistrict(plan, stateDir, stateCode, stem, claimed)
		}
	}

	sort.Slice(plan.Ops, func(i, j int) bool { return plan.Ops[i].OldPath < plan.Ops[j].OldPath })
	return plan, nil
}

// planState resolves one state folder and records its rename if needed.
// Returns the state code and whether districts inside should be planned.
func (r *Renamer) planState(plan *Plan, stateDir string, claimed map[string]bool) (string, bool) {
	if codedName.MatchString(stateDir) {
		plan.AlreadyCoded++
		return stateDir, true
	}

	res := r.resolver.ResolveState(stateDir)
	if !res.Verdict.Resolved() {
		plan.UnmatchedStates = append(plan.UnmatchedStates, stateDir)
		return "", false
	}

	target := filepath.Join(r.tree.Root(), res.MatchedCode)
	if dirExists(target) || claimed[target] {
		// Two textual folders resolving to one code would need a folder
		// merge; that is rare enough to leave to a human.
		plan.Collisions = append(plan.Collisions, stateDir)
		r.logger.Warn().
			Str("folder", stateDir).
			Str("code", res.MatchedCode).
			Msg("State folder target already exists; left untouched")
		return "", false
	}
	claimed[target] = true

	plan.Ops = append(plan.Ops, Op{
		Kind:        KindState,
		OldPath:     filepath.Join(r.tree.Root(), stateDir),
		NewPath:     target,
		MatchedName: res.MatchedName,
		Score:       res.Score,
		Verdict:     res.Verdict,
	})
	return res.MatchedCode, true
}

func (r *Renamer) planDistrict(plan *Plan, stateDir, stateCode, stem string, claimed map[string]bool) {
	if codedName.MatchString(stem) {
		plan.AlreadyCoded++
		return
	}

	res := r.resolver.ResolveDistrict(stateCode, stem)
	switch {
	case res.Verdict == resolve.VerdictSkipped:
		plan.Skipped++
		return
	case !res.Verdict.Resolved():
		plan.UnmatchedDistricts[stateCode] = append(plan.UnmatchedDistricts[stateCode], stem+".csv")
		return
	}

	oldPath := r.tree.Path(stateDir, stem)
	// The state folder may itself be renamed by this plan; the district's
	// final home is under the code either way.
	newPath := filepath.Join(r.tree.Root(), stateCode, res.MatchedCode+".csv")

	kind := KindDistrict
	if fileExists(r.tree.Path(stateDir, res.MatchedCode)) || claimed[newPath] {
		kind = KindMerge
	}
	claimed[newPath] = true

	plan.Ops = append(plan.Ops, Op{
		Kind:        kind,
		OldPath:     oldPath,
		NewPath:     newPath,
		MatchedName: res.MatchedName,
		Score:       res.Score,
		Verdict:     res.Verdict,
	})
}

// Apply performs the plan's operations. State folders move first so that
// district targets exist; merges append with duplicate rows dropped.
func (r *Renamer) Apply(plan *Plan) (*Result, error) {
	result := &Result{}
	coord := merge.New(merge.Identity, &r.logger)

	for _, op := range plan.Ops {
		if op.Kind != KindState {
			continue
		}
		if err := os.Rename(op.OldPath, op.NewPath); err != nil {
			return result, errors.WrapIO("rename", op.OldPath, err)
		}
		result.Renamed++
		r.logger.Info().Str("from", op.OldPath).Str("to", op.NewPath).Msg("Renamed state folder")
	}

	for _, op := range plan.Ops {
		switch op.Kind {
		case KindDistrict, KindMerge:
			if err := r.applyDistrict(op, coord, result); err != nil {
				return result, err
			}
		}
	}

	result.DroppedDuplicates = coord.DroppedDuplicates()
	r.logger.Info().
		Int("renamed", result.Renamed).
		Int("merged", result.Merged).
		Int("dropped_duplicates", result.DroppedDuplicates).
		Msg("Rename pass complete")
	return result, nil
}

func (r *Renamer) applyDistrict(op Op, coord *merge.Coordinator, result *Result) error {
	// The source path was planned against the pre-rename folder name;
	// after the state pass it lives under the code.
	src := op.OldPath
	if _, err := os.Stat(src); os.IsNotExist(err) {
		src = filepath.Join(filepath.Dir(op.NewPath), filepath.Base(op.OldPath))
	}

	if op.Kind == KindDistrict && !fileExists(op.NewPath) {
		if err := os.Rename(src, op.NewPath); err != nil {
			return errors.WrapIO("rename", src, err)
		}
		result.Renamed++
		return nil
	}

	if err := r.mergeInto(src, op.NewPath, coord); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errors.WrapIO("remove", src, err)
	}
	result.Merged++
	return nil
}

// mergeInto appends src's data rows to dest, dropping rows dest already
// has. The coordinator keys on the destination path so repeated merges
// into one file accumulate in a single group.
func (r *Renamer) mergeInto(src, dest string, coord *merge.Coordinator) error {
	destHeader, destRows, err := readCSVLines(dest)
	if err != nil {
		return err
	}
	srcHeader, srcRows, err := readCSVLines(src)
	if err != nil {
		return err
	}

	if _, ok := coord.Group(dest); !ok {
		coord.Ingest(dest, dest, destRows)
	}
	outcome := coord.Ingest(dest, src, srcRows)

	header := destHeader
	if header == "" {
		header = srcHeader
	}
	group, _ := coord.Group(dest)

	out := header + "\n"
	for _, row := range group.Records {
		out += row + "\n"
	}
	if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
		return errors.WrapIO("write", dest, err)
	}

	r.logger.Info().
		Str("from", src).
		Str("into", dest).
		Int("added", outcome.Added).
		Int("duplicates", outcome.SkippedDuplicate).
		Msg("Merged district file")
	return nil
}

// readCSVLines returns a file's header line and raw data lines. Merges
// compare whole lines; field-level normalization is the resolver's job,
// not the renamer's.
func readCSVLines(path string) (string, []string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	var header string
	var rows []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return "", nil, errors.WrapIO("read", path, err)
	}
	return header, rows, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
