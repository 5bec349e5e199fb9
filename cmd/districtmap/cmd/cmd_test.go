package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/resolve"
)

func testApp(t *testing.T, files map[string]string) *appcontext.Mock {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	book := codebook.Load([]codebook.Entry{
		{StateCode: "29", StateName: "Karnataka", DistrictCode: "20", DistrictName: "Mysore"},
		{StateCode: "17", StateName: "Meghalaya", DistrictCode: "07", DistrictName: "Jaintia Hills"},
	})
	table := aliases.New(aliases.File{
		Districts: map[string]map[string]string{
			"17": {"East Jaintia Hills": "07", "West Jaintia Hills": "07"},
		},
	})
	resolver, err := resolve.New(book, resolve.WithAliases(table))
	require.NoError(t, err)

	return &appcontext.Mock{
		MockBook:     book,
		MockAliases:  table,
		MockResolver: resolver,
		MockTree:     store.New(root),
		MockFormat:   "json",
	}
}

func TestCheckCommand(t *testing.T) {
	appCtx := testApp(t, map[string]string{
		"Karnataka/Mysore.csv": "year,month,day\n2020,February,7\n",
	})

	cmd := NewCheckCommand(appCtx)
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
}

func TestRenameCommandDryRun(t *testing.T) {
	appCtx := testApp(t, map[string]string{
		"Karnataka/Mysore.csv": "year,month,day\n2020,February,7\n",
	})

	cmd := NewRenameCommand(appCtx)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(filepath.Join(appCtx.MockTree.Root(), "Karnataka", "Mysore.csv"))
	assert.NoError(t, err, "dry run leaves the tree untouched")
}

func TestRenameCommandApply(t *testing.T) {
	appCtx := testApp(t, map[string]string{
		"Karnataka/Mysore.csv": "year,month,day\n2020,February,7\n",
	})

	cmd := NewRenameCommand(appCtx)
	cmd.SetArgs([]string{"--apply"})
	require.NoError(t, cmd.Execute())

	assert.True(t, appCtx.MockTree.Exists("29", "20"))
}

func TestCodeCommandWritesFlags(t *testing.T) {
	appCtx := testApp(t, map[string]string{
		"29/20.csv": "year,month,day\n2020,February,7\n",
	})
	datesPath := filepath.Join(t.TempDir(), "dates.csv")
	outPath := filepath.Join(t.TempDir(), "coded.csv")
	master := "state,district,year,month,day\n" +
		"Karnataka,Mysore,2020,February,7\n" +
		"29,20,2020,March,1\n"
	require.NoError(t, os.WriteFile(datesPath, []byte(master), 0o644))

	cmd := NewCodeCommand(appCtx)
	cmd.SetArgs([]string{"--dates", datesPath, "--out", outPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "state,district,year,month,day,Auspicious_date", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",1"), "named row hits its calendar date")
	assert.True(t, strings.HasSuffix(lines[2], ",0"), "coded row misses")
}

func TestCombineCommand(t *testing.T) {
	appCtx := testApp(t, map[string]string{
		"29/20.csv": "year,month,day\n2020,February,7\n",
		"17/07.csv": "year,month,day\n2021,May,9\n",
	})
	outPath := filepath.Join(t.TempDir(), "combined.csv")

	cmd := NewCombineCommand(appCtx)
	cmd.SetArgs([]string{"--out", outPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "state,district,year,month,day", lines[0])
	assert.Contains(t, lines, "17,07,2021,May,9")
	assert.Contains(t, lines, "29,20,2020,February,7")
}

func TestRecoverCommand(t *testing.T) {
	dir := t.TempDir()
	missingPath := filepath.Join(dir, "missing.csv")
	dumpPath := filepath.Join(dir, "IN.txt")
	require.NoError(t, os.WriteFile(missingPath,
		[]byte("state,district\nKarnataka,Mysuru\n"), 0o644))

	fields := make([]string, 19)
	fields[0] = "1267254"
	fields[1] = "State of Karnataka"
	fields[7] = "ADM1"
	fields[10] = "19"
	adm1 := strings.Join(fields, "\t")
	fields[0] = "1262772"
	fields[1] = "Mysore"
	fields[3] = "Mysuru"
	fields[7] = "ADM2"
	adm2 := strings.Join(fields, "\t")
	require.NoError(t, os.WriteFile(dumpPath, []byte(adm1+"\n"+adm2+"\n"), 0o644))

	appCtx := testApp(t, nil)
	cmd := NewRecoverCommand(appCtx)
	cmd.SetArgs([]string{"--missing", missingPath, "--geonames", dumpPath})
	assert.NoError(t, cmd.Execute())
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	fromPath := filepath.Join(dir, "recovered.csv")
	intoPath := filepath.Join(dir, "index.csv")
	require.NoError(t, os.WriteFile(fromPath,
		[]byte("state_name,matched_state,district_name,matched_district,geoname_id\n"+
			"meghalaya,Meghalaya,east jantia hills,East Jaintia Hills,123\n"+
			"meghalaya,Meghalaya,east jantia,East Jaintia Hills,123\n"+
			"karnataka,Karnataka,mandya,,\n"), 0o644))
	require.NoError(t, os.WriteFile(intoPath,
		[]byte("state,district,geoname_id\nKarnataka,Mysore,456\n"), 0o644))

	appCtx := testApp(t, nil)
	cmd := NewMergeCommand(appCtx)
	cmd.SetArgs([]string{"--from", fromPath, "--into", intoPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(intoPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3, "header plus one existing and one recovered row")
	assert.Contains(t, string(data), "Karnataka,Mysore,456")
	assert.Contains(t, string(data), "Meghalaya,East Jaintia Hills,123")
	assert.NotContains(t, string(data), "mandya", "rows without a GeoNames id are skipped")
}

func TestMergeCommandPlainHeaders(t *testing.T) {
	dir := t.TempDir()
	fromPath := filepath.Join(dir, "extra.csv")
	intoPath := filepath.Join(dir, "index.csv")
	require.NoError(t, os.WriteFile(fromPath,
		[]byte("state,district,geoname_id\nKarnataka,Mandya,789\n"), 0o644))
	require.NoError(t, os.WriteFile(intoPath,
		[]byte("state,district,geoname_id\n"), 0o644))

	appCtx := testApp(t, nil)
	cmd := NewMergeCommand(appCtx)
	cmd.SetArgs([]string{"--from", fromPath, "--into", intoPath})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(intoPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Karnataka,Mandya,789")
}
