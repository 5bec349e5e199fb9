package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/internal/schema"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestStatesAndDistricts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"29/20.csv":      "year,month,day\n2020,February,7\n",
		"29/15.csv":      "year,month,day\n2020,March,1\n",
		"13/13.csv":      "year,month,day\n2021,May,9\n",
		"13/notes.txt":   "ignored",
		"stray-file.csv": "year,month,day\n",
	})
	s := New(root)

	states, err := s.States()
	require.NoError(t, err)
	assert.Equal(t, []string{"13", "29"}, states, "only directories count as states, sorted")

	districts, err := s.Districts("29")
	require.NoError(t, err)
	assert.Equal(t, []string{"15", "20"}, districts)

	districts, err = s.Districts("13")
	require.NoError(t, err)
	assert.Equal(t, []string{"13"}, districts, "non-CSV files are skipped")
}

func TestDistrictsMissingState(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Districts("99")
	assert.Error(t, err)
}

func TestPathAndExists(t *testing.T) {
	root := writeTree(t, map[string]string{
		"29/20.csv": "year,month,day\n2020,February,7\n",
	})
	s := New(root)

	assert.Equal(t, filepath.Join(root, "29", "20.csv"), s.Path("29", "20"))
	assert.True(t, s.Exists("29", "20"))
	assert.False(t, s.Exists("29", "21"))
}

func TestDateCacheReadsAndMemoizes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"29/20.csv": "year,month,day\n2020,February,7\n2020,February,7\n2020,March,1\nbad,row,\n",
	})
	s := New(root)
	c := NewDateCache(schema.DefaultMapping())

	set, ok, err := c.Dates(s.Path("29", "20"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, set, 2, "duplicate and unparsable rows collapse out of the set")
	assert.True(t, set["2020-02-07"])
	assert.True(t, set["2020-03-01"])
	assert.Equal(t, 1, c.Len())

	// Rewrite the file behind the cache; the memoized set must win.
	require.NoError(t, os.WriteFile(s.Path("29", "20"), []byte("year,month,day\n2022,June,1\n"), 0o644))
	set, ok, err = c.Dates(s.Path("29", "20"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, set["2020-02-07"])
	assert.False(t, set["2022-06-01"])
}

func TestDateCacheMemoizesMisses(t *testing.T) {
	root := writeTree(t, nil)
	s := New(root)
	c := NewDateCache(schema.DefaultMapping())
	path := s.Path("29", "21")

	set, ok, err := c.Dates(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, set)

	// Creating the file after a memoized miss changes nothing until the
	// caller invalidates.
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("year,month,day\n2020,February,7\n"), 0o644))

	_, ok, err = c.Dates(path)
	require.NoError(t, err)
	assert.False(t, ok)

	c.Invalidate(path)
	set, ok, err = c.Dates(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, set["2020-02-07"])
}

func TestDateCacheInvalidateForcesReread(t *testing.T) {
	root := writeTree(t, map[string]string{
		"29/20.csv": "year,month,day\n2020,February,7\n",
	})
	s := New(root)
	c := NewDateCache(schema.DefaultMapping())
	path := s.Path("29", "20")

	_, ok, err := c.Dates(path)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("year,month,day\n2022,June,1\n"), 0o644))
	c.Invalidate(path)

	set, ok, err := c.Dates(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, set["2022-06-01"])
	assert.False(t, set["2020-02-07"])
}
