package shared

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// FinancialYear is an Indian fiscal year (April 1 to March 31) in "YY-YY"
// form, e.g. "25-26" for 2025-04-01 through 2026-03-31.
type FinancialYear string

// ErrInvalidFinancialYear indicates a malformed or non-consecutive year string.
var ErrInvalidFinancialYear = errors.New("invalid financial year")

var fyPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)

// FinancialYearOf returns the fiscal year containing the given date.
func FinancialYearOf(date time.Time) FinancialYear {
	start := date.Year()
	if date.Month() < time.April {
		start--
	}
	return FinancialYear(fmt.Sprintf("%02d-%02d", start%100, (start+1)%100))
}

// CurrentFinancialYear returns the fiscal year containing now.
func CurrentFinancialYear(now time.Time) FinancialYear {
	return FinancialYearOf(now)
}

// ParseFinancialYear validates a "YY-YY" string with consecutive years.
func ParseFinancialYear(s string) (FinancialYear, error) {
	m := fyPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFinancialYear, s)
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	if (from+1)%100 != to {
		return "", fmt.Errorf("%w: %q", ErrInvalidFinancialYear, s)
	}
	return FinancialYear(s), nil
}

// String implements fmt.Stringer.
func (fy FinancialYear) String() string {
	return string(fy)
}
