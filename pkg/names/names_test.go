package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrict(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases", "Karnataka", "karnataka"},
		{"strips spaces", "Andhra Pradesh", "andhrapradesh"},
		{"ampersand spelled out", "Jammu & Kashmir", "jammuandkashmir"},
		{"punctuation removed", "Dadra and Nagar Haveli, Daman & Diu", "dadraandnagarhavelidamananddiu"},
		{"digits kept", "Ward 12", "ward12"},
		{"empty", "", ""},
		{"whitespace only", "  \t ", ""},
		{"punctuation only", "---,,,", ""},
		{"unicode folded", "MYSÛRU", "mysru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strict(tt.raw))
		})
	}
}

func TestLoose(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases and collapses", "East  Jaintia   Hills", "east jaintia hills"},
		{"trims commas", " Mysore, ", "mysore"},
		{"keeps internal punctuation", "Sri Potti Sriramulu Nellore (SPSR)", "sri potti sriramulu nellore (spsr)"},
		{"ampersand spelled out", "A & N Island", "a and n island"},
		{"empty", "", ""},
		{"comma only", ",", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Loose(tt.raw))
		})
	}
}

// Both canonical forms must be idempotent for every input, including junk.
func TestCanonicalIdempotence(t *testing.T) {
	inputs := []string{
		"", " ", "Karnataka", "jammu & kashmir", "EAST  godavari ",
		"…punctuation—only…", "Visakhapatnam,", "A&N", "12 34", "ß", "İstanbul",
	}
	for _, in := range inputs {
		assert.Equal(t, Strict(in), Strict(Strict(in)), "strict idempotence for %q", in)
		assert.Equal(t, Loose(in), Loose(Loose(in)), "loose idempotence for %q", in)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  ,-- "))
	assert.False(t, IsBlank("Goa"))
}
