package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTruncateToDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Skopje")
	require.NoError(t, err)

	tests := []struct {
		in       time.Time
		expected time.Time
	}{
		{
			time.Date(2024, 1, 10, 9, 30, 15, 99, time.UTC),
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2024, 1, 10, 23, 59, 59, 0, loc),
			time.Date(2024, 1, 10, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		got := TruncateToDay(tt.in)
		require.True(t, tt.expected.Equal(got), "%q != %q", tt.expected, got)
		require.Equal(t, tt.in.Location(), got.Location())
	}
}
