package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/resolve"
)

func writeTree(t *testing.T, files []string) *store.Store {
	t.Helper()
	root := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("year,month,day\n"), 0o644))
	}
	return store.New(root)
}

func TestRunExactMatches(t *testing.T) {
	tree := writeTree(t, []string{
		"Karnataka/Mysore.csv",
		"Karnataka/Bangalore.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysore"},
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "18", DistrictName: "Bangalore"},
	})

	c, err := New(tree)
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.OK)
	assert.Empty(t, report.Findings)
}

func TestRunCloseMatchAndMiss(t *testing.T) {
	tree := writeTree(t, []string{
		"Andhra Pradesh/Vishakapatnam.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "28", StateName: "Andhra Pradesh", DistrictCode: "13", DistrictName: "Visakhapatnam"},
		{StateCode: "28", StateName: "Andhra Pradesh", DistrictCode: "14", DistrictName: "Zunheboto"},
	})

	c, err := New(tree)
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	require.Len(t, report.Findings, 2)
	assert.Equal(t, 1, report.CloseMatches)
	assert.Equal(t, 1, report.MissingDistricts)

	warn := report.Findings[0]
	assert.Equal(t, "Visakhapatnam", warn.District)
	assert.Equal(t, StatusCloseMatch, warn.Status)
	assert.Equal(t, "Vishakapatnam.csv", warn.MatchedFile)
	assert.InDelta(t, 1.0-2.0/13.0, warn.Similarity, 1e-9)

	miss := report.Findings[1]
	assert.Equal(t, StatusMissingDistrict, miss.Status)

	mismatches := report.Mismatches()
	require.Len(t, mismatches, 1)
	assert.Equal(t, "Zunheboto", mismatches[0].District)
}

func TestRunFolderAlias(t *testing.T) {
	tree := writeTree(t, []string{
		"Andaman and Nicobar/Nicobars.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "35", StateName: "A&N Island", DistrictCode: "01", DistrictName: "Nicobars"},
	})

	c, err := New(tree, WithFolderAliases(map[string]string{
		"A&N Island": "Andaman and Nicobar",
	}))
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OK)
	assert.Zero(t, report.MissingStates)
}

func TestRunFuzzyFolder(t *testing.T) {
	tree := writeTree(t, []string{
		"Uttarakhand/Nainital.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "05", StateName: "Uttrakhand", DistrictCode: "13", DistrictName: "Nainital"},
	})

	c, err := New(tree)
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OK, "misspelled state resolves to its folder by similarity")
}

func TestRunMissingState(t *testing.T) {
	tree := writeTree(t, []string{
		"Karnataka/Mysore.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "99", StateName: "Atlantis", DistrictCode: "01", DistrictName: "Nowhere"},
	})

	c, err := New(tree)
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, StatusMissingState, report.Findings[0].Status)
	assert.Equal(t, 1, report.MissingStates)
	assert.Len(t, report.Mismatches(), 1)
}

func TestRunSkipsBlankRows(t *testing.T) {
	tree := writeTree(t, []string{
		"Karnataka/Mysore.csv",
	})
	book := codebook.Load([]codebook.Entry{
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysore"},
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "21", DistrictName: "  "},
	})

	c, err := New(tree)
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.SkippedBlank)
}

func TestRunEmptyFolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Karnataka"), 0o755))
	book := codebook.Load([]codebook.Entry{
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysore"},
	})

	c, err := New(store.New(root))
	require.NoError(t, err)
	report, err := c.Run(book)
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, StatusMissingDistrict, report.Findings[0].Status)
	assert.Empty(t, report.Findings[0].MatchedFile)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	tree := writeTree(t, nil)
	_, err = New(tree, WithThresholds(resolve.Thresholds{State: 1.5, District: 0.7}))
	assert.Error(t, err)

	_, err = New(tree, WithLogger(nil))
	assert.Error(t, err)
}
