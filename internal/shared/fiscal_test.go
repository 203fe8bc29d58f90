package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFinancialYearOf(t *testing.T) {
	cases := []struct {
		date time.Time
		want FinancialYear
	}{
		{time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC), "24-25"},
		{time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC), "25-26"},
		{time.Date(1999, time.June, 1, 0, 0, 0, 0, time.UTC), "99-00"},
		{time.Date(2000, time.February, 1, 0, 0, 0, 0, time.UTC), "99-00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FinancialYearOf(tc.date), "date %s", tc.date)
	}
}

func TestParseFinancialYear(t *testing.T) {
	fy, err := ParseFinancialYear("25-26")
	require.NoError(t, err)
	require.Equal(t, FinancialYear("25-26"), fy)

	// century rollover is still consecutive
	_, err = ParseFinancialYear("99-00")
	require.NoError(t, err)

	for _, bad := range []string{"", "2025-26", "25/26", "25-27", "26-25", "ab-cd"} {
		_, err := ParseFinancialYear(bad)
		require.ErrorIs(t, err, ErrInvalidFinancialYear, "input %q", bad)
	}
}
