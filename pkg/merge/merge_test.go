package merge

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/districtmap/districtmap/pkg/logging"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	return New(Identity, logging.NewTestLogger(t).Logger)
}

func TestFirstIngestOwnsGroup(t *testing.T) {
	c := newTestCoordinator(t)

	out := c.Ingest("17/07", "eastjaintiahills", []string{"2020-01-01"})
	assert.Equal(t, Outcome{Added: 1}, out)

	g, ok := c.Group("17/07")
	require.True(t, ok)
	assert.Equal(t, []string{"eastjaintiahills"}, g.RawKeys)
	assert.Equal(t, []string{"2020-01-01"}, g.Records)
	assert.Zero(t, g.DroppedDuplicates)
}

// The Jaintia Hills case: two raw district names alias to code 07 under
// state 17; their date sets union to two unique dates with one duplicate
// dropped.
func TestMergeDeduplicates(t *testing.T) {
	c := newTestCoordinator(t)

	c.Ingest("17/07", "eastjaintiahills", []string{"2020-01-01"})
	out := c.Ingest("17/07", "westjaintiahills", []string{"2020-01-01", "2020-02-02"})

	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.SkippedDuplicate)
	assert.Equal(t, "eastjaintiahills", out.MergedWith)

	g, ok := c.Group("17/07")
	require.True(t, ok)
	assert.Len(t, g.Records, 2)
	assert.Equal(t, 1, g.DroppedDuplicates)
	assert.Equal(t, []string{"eastjaintiahills", "westjaintiahills"}, g.RawKeys)
}

// Merging A-then-B and B-then-A must produce the same final record set;
// only duplicate counts and provenance may differ by order.
func TestMergeCommutative(t *testing.T) {
	ra := []string{"2020-01-01", "2020-03-03"}
	rb := []string{"2020-01-01", "2020-02-02"}

	ab := newTestCoordinator(t)
	ab.Ingest("29/20", "mysore", ra)
	ab.Ingest("29/20", "mysuru", rb)

	ba := newTestCoordinator(t)
	ba.Ingest("29/20", "mysuru", rb)
	ba.Ingest("29/20", "mysore", ra)

	gab, _ := ab.Group("29/20")
	gba, _ := ba.Group("29/20")

	sort.Strings(gab.Records)
	sort.Strings(gba.Records)
	if diff := cmp.Diff(gab.Records, gba.Records); diff != "" {
		t.Errorf("final contents differ by ingest order (-ab +ba):\n%s", diff)
	}
	assert.Equal(t, gab.DroppedDuplicates, gba.DroppedDuplicates)
}

func TestInsertionOrderPreserved(t *testing.T) {
	c := newTestCoordinator(t)
	c.Ingest("29/20", "a", []string{"2020-02-02", "2020-01-01"})
	c.Ingest("29/20", "b", []string{"2020-03-03", "2020-01-01"})

	g, _ := c.Group("29/20")
	assert.Equal(t, []string{"2020-02-02", "2020-01-01", "2020-03-03"}, g.Records)
}

func TestNaturalKeyFunc(t *testing.T) {
	// Records are "date,note" rows keyed by the date prefix.
	key := func(rec string) string {
		if i := len("2020-01-01"); len(rec) >= i {
			return rec[:i]
		}
		return rec
	}
	c := New(key, logging.NewTestLogger(t).Logger)

	c.Ingest("29/20", "a", []string{"2020-01-01,morning"})
	out := c.Ingest("29/20", "b", []string{"2020-01-01,evening", "2020-02-02,noon"})

	assert.Equal(t, 1, out.Added)
	assert.Equal(t, 1, out.SkippedDuplicate, "same date with different payload is a duplicate")

	g, _ := c.Group("29/20")
	assert.Equal(t, []string{"2020-01-01,morning", "2020-02-02,noon"}, g.Records)
}

func TestGroupsSnapshotOrder(t *testing.T) {
	c := newTestCoordinator(t)
	c.Ingest("29/20", "a", []string{"x"})
	c.Ingest("17/07", "b", []string{"y"})
	c.Ingest("29/20", "c", nil)

	groups := c.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "29/20", groups[0].Code)
	assert.Equal(t, "17/07", groups[1].Code)
}

func TestMergedOnlyListsCollisions(t *testing.T) {
	c := newTestCoordinator(t)
	c.Ingest("29/20", "a", []string{"x"})
	c.Ingest("29/21", "b", []string{"y"})
	c.Ingest("29/20", "c", []string{"z"})

	merged := c.Merged()
	require.Len(t, merged, 1)
	assert.Equal(t, "29/20", merged[0].Code)
}

func TestDroppedDuplicatesMonotonic(t *testing.T) {
	c := newTestCoordinator(t)
	prev := 0
	for _, key := range []string{"a", "b", "c"} {
		c.Ingest("29/20", key, []string{"2020-01-01"})
		now := c.DroppedDuplicates()
		assert.GreaterOrEqual(t, now, prev)
		prev = now
	}
	assert.Equal(t, 2, prev)
}

func TestAdvisoryMergeLogged(t *testing.T) {
	tl := logging.NewTestLogger(t)
	c := New(Identity, tl.Logger)

	c.Ingest("17/07", "east", []string{"x"})
	assert.False(t, tl.Contains("collapse"), "first ingest is not a collision")

	c.Ingest("17/07", "west", []string{"y"})
	assert.True(t, tl.Contains("collapse"), "collision is logged as advisory")
}

func TestSnapshotIsolation(t *testing.T) {
	c := newTestCoordinator(t)
	c.Ingest("29/20", "a", []string{"x"})

	g, _ := c.Group("29/20")
	g.Records[0] = "mutated"
	g.RawKeys[0] = "mutated"

	fresh, _ := c.Group("29/20")
	assert.Equal(t, "x", fresh.Records[0])
	assert.Equal(t, "a", fresh.RawKeys[0])
}
