package dateutil

import (
	"testing"
	"time"
	"upset-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tz := timezone.Location

	testCases := []struct {
		text     string
		expected time.Time
		ok       bool
	}{
		{
			text:     "January 25, 2025",
			expected: time.Date(2025, 1, 25, 0, 0, 0, 0, tz),
			ok:       true,
		},
		{
			text:     "2025-01-25",
			expected: time.Date(2025, 1, 25, 0, 0, 0, 0, tz),
			ok:       true,
		},
		{
			// trailing broadcast junk defeats a direct parse but not
			// the iso prefix
			text:     "2025-01-25 / Main Card 10PM ET",
			expected: time.Date(2025, 1, 25, 0, 0, 0, 0, tz),
			ok:       true,
		},
		{
			// month scan picks the pieces out of surrounding noise
			text:     "Card starts Jan 25 2025 at the Apex",
			expected: time.Date(2025, 1, 25, 0, 0, 0, 0, tz),
			ok:       true,
		},
		{
			text:     "Sept 13, 2025",
			expected: time.Date(2025, 9, 13, 0, 0, 0, 0, tz),
			ok:       true,
		},
		{
			text: "TBD",
			ok:   false,
		},
		{
			text: "",
			ok:   false,
		},
		{
			// a month with a day but no plausible year
			text: "Card starts August 4 1299",
			ok:   false,
		},
		{
			text: "Fight Night",
			ok:   false,
		},
	}

	for _, test := range testCases {
		got, ok := Parse(test.text)
		require.Equal(t, test.ok, ok, "input: %q", test.text)
		if !test.ok {
			continue
		}
		require.True(t, test.expected.Equal(got), "input: %q got: %s", test.text, got)
	}
}

func TestParseIdempotent(t *testing.T) {
	first, ok1 := Parse("January 25, 2025")
	second, ok2 := Parse("January 25, 2025")
	require.Equal(t, ok1, ok2)
	require.True(t, first.Equal(second))
}

func FuzzParse(f *testing.F) {
	f.Add("January 25, 2025")
	f.Add("2025-01-25")
	f.Add("TBD")
	f.Add("Sat, Aug 17 / 10:00 PM EDT")
	f.Add("\x00\xff")

	f.Fuzz(func(t *testing.T, text string) {
		first, ok1 := Parse(text)
		second, ok2 := Parse(text)
		if ok1 != ok2 || !first.Equal(second) {
			t.Fatalf("parse is not deterministic for %q", text)
		}
	})
}
