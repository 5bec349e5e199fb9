package recovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/internal/geonames"
)

func testIndex(t *testing.T) *geonames.Index {
	t.Helper()
	line := func(id, name, alternates, feature, admin1 string) string {
		fields := make([]string, 19)
		fields[0] = id
		fields[1] = name
		fields[3] = alternates
		fields[7] = feature
		fields[10] = admin1
		return strings.Join(fields, "\t")
	}
	dump := strings.Join([]string{
		line("1267254", "State of Karnataka", "", "ADM1", "19"),
		line("1252881", "State of Meghalaya", "", "ADM1", "18"),
		line("1262772", "Mysore", "Mysuru", "ADM2", "19"),
		line("1277306", "Bangalore Urban", "Bengaluru", "ADM2", "19"),
		line("1263205", "East Jaintia Hills", "", "ADM2", "18"),
	}, "\n")
	idx, err := geonames.Read(strings.NewReader(dump))
	require.NoError(t, err)
	return idx
}

func TestRunRecoversThroughAlternates(t *testing.T) {
	r, err := New(testIndex(t))
	require.NoError(t, err)

	rows := r.Run([]Query{{State: "Karnataka", District: "Mysuru"}})
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "State of Karnataka", row.MatchedState, "plain name partial-matches the ADM1 form")
	assert.GreaterOrEqual(t, row.StateScore, 0.80)
	assert.Equal(t, "Mysuru", row.MatchedDistrict)
	assert.Equal(t, "1262772", row.GeonameID)
}

func TestRunScopesDistrictsByState(t *testing.T) {
	r, err := New(testIndex(t))
	require.NoError(t, err)

	rows := r.Run([]Query{{State: "Meghalaya", District: "East Jantia Hills"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "East Jaintia Hills", rows[0].MatchedDistrict)
	assert.Equal(t, "1263205", rows[0].GeonameID)
}

func TestRunUnmatchedKeepsRow(t *testing.T) {
	r, err := New(testIndex(t))
	require.NoError(t, err)

	rows := r.Run([]Query{{State: "Atlantis", District: "Nowhere"}})
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Atlantis", row.StateName)
	assert.Empty(t, row.MatchedState)
	assert.Empty(t, row.GeonameID)
	assert.Less(t, row.DistrictScore, 0.80, "best score is still reported")
}

func TestRunOneRowPerDistinctInput(t *testing.T) {
	r, err := New(testIndex(t))
	require.NoError(t, err)

	rows := r.Run([]Query{
		{State: "Karnataka", District: "Mysore"},
		{State: "karnataka", District: "MYSORE"},
		{State: "Karnataka", District: "Bangalore Urban"},
	})
	assert.Len(t, rows, 2, "case variants of one pair collapse")
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(testIndex(t), WithThreshold(1.5))
	assert.Error(t, err)

	_, err = New(testIndex(t), WithLogger(nil))
	assert.Error(t, err)
}

func TestMergeRows(t *testing.T) {
	existing := []GeoRow{
		{State: "State of Karnataka", District: "Mysore", GeonameID: "1262772"},
	}
	recovered := []Row{
		{MatchedState: "State of Karnataka", MatchedDistrict: "Mysore", GeonameID: "1262772"},
		{MatchedState: "State of Karnataka", MatchedDistrict: "Bangalore Urban", GeonameID: "1277306"},
		{MatchedState: "", MatchedDistrict: "", GeonameID: ""},
		{MatchedState: "State of Meghalaya", MatchedDistrict: "East Jaintia Hills", GeonameID: "0.0"},
	}

	merged, stats := MergeRows(existing, recovered)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 2, stats.SkippedEmpty)
	assert.Equal(t, 1, stats.SkippedDuplicate)
	assert.Equal(t, 2, stats.Total)
	require.Len(t, merged, 2)
	assert.Equal(t, "Bangalore Urban", merged[1].District)
}

func TestSortRows(t *testing.T) {
	rows := []GeoRow{
		{State: "B", District: "z"},
		{State: "A", District: "b"},
		{State: "A", District: "a"},
	}
	SortRows(rows)
	assert.Equal(t, GeoRow{State: "A", District: "a"}, rows[0])
	assert.Equal(t, GeoRow{State: "B", District: "z"}, rows[2])
}
