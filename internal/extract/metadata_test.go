package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMetadataRemovesBylineAndDate(t *testing.T) {
	t.Parallel()

	in := []string{
		"Jane Doe",
		"March 3, 2025",
		"Forces advanced near the city amid continued fighting over several contested districts today.",
	}
	got := StripMetadata(in)
	assert.Equal(t, in[2:], got)
}

func TestStripMetadataStopsAtFirstNarrativeParagraph(t *testing.T) {
	t.Parallel()

	in := []string{
		"Press ISW",
		"Russian forces conducted limited attacks.",
		"John Smith",
	}
	got := StripMetadata(in)
	assert.Equal(t, in[1:], got)
}

func TestStripMetadataKeepsShortNarrativeLead(t *testing.T) {
	t.Parallel()

	in := []string{
		"Ukrainian General Staff reported repelling assaults near Pokrovsk overnight.",
		"Russian forces continued offensive operations along the front.",
	}
	got := StripMetadata(in)
	assert.Equal(t, in, got)
}

func TestStripMetadataOnlyScansLeadingParagraphs(t *testing.T) {
	t.Parallel()

	in := []string{"Jane Doe", "John Smith", "March 3", "Mark Twain", "Narrative begins here."}
	got := StripMetadata(in)
	assert.Equal(t, []string{"Mark Twain", "Narrative begins here."}, got)
}

func TestStripMetadataKeepsEverythingWhenAllWouldGo(t *testing.T) {
	t.Parallel()

	in := []string{"Jane Doe", "March 3, 2025"}
	got := StripMetadata(in)
	assert.Equal(t, in, got)

	got[0] = "mutated"
	assert.Equal(t, "Jane Doe", in[0])

	assert.Empty(t, StripMetadata(nil))
}

func TestIsMetadata(t *testing.T) {
	t.Parallel()

	long := "March 3 " + strings.Repeat("word ", 25)
	cases := map[string]bool{
		"Jane Doe":                     true,
		"By Kateryna Stepanenko":       true,
		"Mary-Kate O'Neil":             true,
		"Jane Doe, ISW":                true,
		"January 12":                   true,
		"7:15pm ET":                    true,
		"Updated 5 pm":                 true,
		"Tags":                         true,
		"share":                        true,
		"ISW Press":                    true,
		"":                             false,
		"the front line held":          false,
		"Russian forces attacked.":     false,
		long:                           false,
		"Ukrainian forces in Kharkiv.": false,
		"Ukrainian General Staff reported repelling assaults.": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsMetadata(in), "%q", in)
	}
}

func TestDropPrompts(t *testing.T) {
	t.Parallel()

	in := []string{
		"Click here to read the full report.",
		"Russian forces attacked.",
		"ISW will update this map.",
		"Note: ISW does not receive classified material.",
		"Correction: an earlier version misstated the date.",
		"Ukrainian forces counterattacked.",
	}
	assert.Equal(t, []string{"Russian forces attacked.", "Ukrainian forces counterattacked."}, DropPrompts(in))
}
