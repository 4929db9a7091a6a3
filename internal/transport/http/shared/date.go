package shared

import (
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006/1/2", "2006-1-2", time.RFC3339}

// ParseDate accepts YYYY-MM-DD, YYYY/MM/DD or RFC3339. Empty input yields
// the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
