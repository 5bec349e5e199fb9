package codebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/pkg/errors"
)

func testRows() []Entry {
	return []Entry{
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysuru"},
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "21", DistrictName: "Mandya"},
		{StateCode: "28", StateName: "Andhra Pradesh", DistrictCode: "13", DistrictName: "Visakhapatnam"},
		{StateCode: "17", StateName: "Meghalaya", DistrictCode: "07", DistrictName: "Jaintia Hills"},
	}
}

func TestLoadPadsCodes(t *testing.T) {
	b := Load([]Entry{
		{StateCode: "7", StateName: "Delhi", DistrictCode: "1", DistrictName: "North Delhi"},
		{StateCode: "7.0", StateName: "Delhi", DistrictCode: "02", DistrictName: "South Delhi"},
	})
	require.Equal(t, 2, b.Len())
	for _, e := range b.Entries() {
		assert.Len(t, e.StateCode, 2)
		assert.Len(t, e.DistrictCode, 2)
	}
	assert.Equal(t, "07", b.Entries()[0].StateCode)
}

func TestLoadDropsNonNumericCodes(t *testing.T) {
	rows := append(testRows(),
		Entry{StateCode: "State Code", StateName: "State Name", DistrictCode: "District Code", DistrictName: "District Name"},
		Entry{StateCode: "29", StateName: "Karnataka", DistrictCode: "n/a", DistrictName: "Unknown"},
	)
	b := Load(rows)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 2, b.Dropped())
}

func TestLoadDropsDuplicateCodePairs(t *testing.T) {
	rows := append(testRows(),
		Entry{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysore"},
	)
	b := Load(rows)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 1, b.Duplicates())

	// First spelling wins.
	name, ok := b.DistrictName("29", "20")
	require.True(t, ok)
	assert.Equal(t, "Mysuru", name)
}

func TestFindStateExact(t *testing.T) {
	b := Load(testRows())

	code, ok := b.FindStateExact("Karnataka")
	require.True(t, ok)
	assert.Equal(t, "29", code)

	// Strict canonical form: spacing and case are irrelevant.
	code, ok = b.FindStateExact("  andhra PRADESH ")
	require.True(t, ok)
	assert.Equal(t, "28", code)

	_, ok = b.FindStateExact("Atlantis")
	assert.False(t, ok)

	_, ok = b.FindStateExact("")
	assert.False(t, ok, "blank names never match")
}

func TestFindDistrictExactIsStateScoped(t *testing.T) {
	b := Load(testRows())

	code, ok := b.FindDistrictExact("29", "Mysuru")
	require.True(t, ok)
	assert.Equal(t, "20", code)

	// Visakhapatnam exists, but not under Karnataka.
	_, ok = b.FindDistrictExact("29", "Visakhapatnam")
	assert.False(t, ok)
}

func TestCandidatesForState(t *testing.T) {
	b := Load(testRows())

	pool := b.CandidatesForState("29")
	require.Len(t, pool, 2)
	// Sorted by canonical name for deterministic fuzzy tie-breaking.
	assert.Equal(t, "mandya", pool[0].Name)
	assert.Equal(t, "mysuru", pool[1].Name)

	assert.Empty(t, b.CandidatesForState("99"), "unknown state yields an empty pool, not an error")
}

func TestStates(t *testing.T) {
	b := Load(testRows())
	assert.Equal(t, []string{"17", "28", "29"}, b.States())

	sc := b.StateCandidates()
	require.Len(t, sc, 3)
	assert.Equal(t, "andhra pradesh", sc[0].Name)
}

func TestLoadMapsMissingColumnIsFatal(t *testing.T) {
	rows := []map[string]string{
		{ColStateCode: "29", ColStateName: "Karnataka", ColDistrictName: "Mysuru"},
	}
	_, err := LoadMaps("state-district-code.csv", rows)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedCodeBook(err))
	assert.Contains(t, err.Error(), ColDistrictCode)
	assert.Contains(t, err.Error(), "state-district-code.csv")
}

func TestLoadMapsEmpty(t *testing.T) {
	_, err := LoadMaps("empty.csv", nil)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedCodeBook(err))
}

func TestLoadMapsHappyPath(t *testing.T) {
	rows := []map[string]string{
		{ColStateCode: "29", ColStateName: "Karnataka", ColDistrictCode: "20", ColDistrictName: "Mysuru"},
	}
	b, err := LoadMaps("codes.csv", rows)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}
