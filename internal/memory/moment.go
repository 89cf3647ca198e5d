package memory

import (
	"fmt"
	"time"

	"github.com/memoriesapp/memories/internal/common"
)

// momentLayout is the canonical wire encoding of a memory's timestamp:
// a fixed-width numeric string in UTC, second precision.
const momentLayout = "20060102150405"

// FormatMoment encodes t as a 14-digit YYYYMMDDHHMMSS string in UTC.
func FormatMoment(t time.Time) string {
	return t.UTC().Format(momentLayout)
}

// ParseMoment decodes a 14-digit moment string back into a UTC time.
// The parse is strict: wrong length, non-digit characters, or out-of-range
// date components yield a decode error. FormatMoment(ParseMoment(s)) == s
// for every accepted s.
func ParseMoment(s string) (time.Time, error) {
	if len(s) != len(momentLayout) {
		return time.Time{}, fmt.Errorf("%w: moment %q must be %d digits", common.ErrorDecode, s, len(momentLayout))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%w: moment %q contains a non-digit", common.ErrorDecode, s)
		}
	}
	t, err := time.ParseInLocation(momentLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: moment %q: %v", common.ErrorDecode, s, err)
	}
	return t, nil
}

// MonthDay returns the MMDD portion of t in UTC, the key used to fetch
// "today across years".
func MonthDay(t time.Time) string {
	return t.UTC().Format("0102")
}

// momentYear extracts the YYYY prefix from an already-validated moment string.
func momentYear(moment string) int {
	if len(moment) < 4 {
		return 0
	}
	year := 0
	for _, r := range moment[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
