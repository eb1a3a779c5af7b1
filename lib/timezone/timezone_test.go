package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	cases := []struct {
		in     time.Time
		expect time.Time
	}{
		{
			in:     time.Date(2025, time.January, 25, 23, 45, 12, 0, Location),
			expect: time.Date(2025, time.January, 25, 0, 0, 0, 0, Location),
		},
		{
			in:     time.Date(2025, time.January, 25, 0, 0, 0, 0, Location),
			expect: time.Date(2025, time.January, 25, 0, 0, 0, 0, Location),
		},
		{
			// 2am UTC is still the previous day in ET
			in:     time.Date(2025, time.June, 15, 2, 0, 0, 0, time.UTC),
			expect: time.Date(2025, time.June, 14, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, StartOfDay(test.in))
	}
}
