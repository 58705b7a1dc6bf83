package imports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 6, 30, 15, 4, 5, 0, time.UTC)
	today := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		"2025-01-02":  time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		"1/15/2025":   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		"2-Jan-25":    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		"15-sep-2024": time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC),
		"7-Foo-25":    time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		"45658":       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"":            today,
		"not a date":  today,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseDate(in, now), in)
	}
}
