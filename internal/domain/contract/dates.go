package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NormalizeDate rewrites the date spellings the back office sends into
// YYYY/MM/DD. Compact forms with seven or six digits carry a one-digit month:
// "2024315" is 2024/03/15 and "202431" is 2024/03/01. Unparseable input
// yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return ""
	}

	var y, m, d string
	if strings.ContainsAny(s, "/-.") {
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' || r == '.' })
		if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) > 2 || len(parts[2]) > 2 {
			return ""
		}
		y, m, d = parts[0], parts[1], parts[2]
	} else {
		switch len(s) {
		case 8:
			y, m, d = s[:4], s[4:6], s[6:]
		case 7:
			y, m, d = s[:4], s[4:5], s[5:]
		case 6:
			y, m, d = s[:4], s[4:5], s[5:]
		default:
			return ""
		}
	}

	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return ""
	}
	return fmt.Sprintf("%04d/%02d/%02d", year, month, day)
}

// parseNormalized parses the output of NormalizeDate.
func parseNormalized(s string) (time.Time, bool) {
	t, err := time.Parse("2006/01/02", NormalizeDate(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
