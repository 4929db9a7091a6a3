package session

import (
	"strings"
	"time"
)

const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "18:00"
)

// Session is the signed-in user's profile and work schedule as returned by
// the login webhook. Hours are expressed in hours, not days.
type Session struct {
	Account              string  `json:"account"`
	DisplayName          string  `json:"displayName"`
	Title                string  `json:"title"`
	Email                string  `json:"email"`
	WorkStartTime        string  `json:"workStartTime"`
	WorkEndTime          string  `json:"workEndTime"`
	AnnualLeaveAllowance float64 `json:"annualLeaveAllowance"`
	AnnualLeaveUsed      float64 `json:"annualLeaveUsed"`
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.Account) != ""
}

// RemainingLeaveHours is the paid-leave balance sent to the precheck webhook.
func (s Session) RemainingLeaveHours() float64 {
	return s.AnnualLeaveAllowance - s.AnnualLeaveUsed
}

// WorkHours parses the configured work start and end on day. Missing or
// malformed values fall back to 09:00 and 18:00.
func (s Session) WorkHours(day time.Time) (time.Time, time.Time) {
	start := ClockOn(day, s.WorkStartTime, DefaultWorkStart)
	end := ClockOn(day, s.WorkEndTime, DefaultWorkEnd)
	return start, end
}

// ClockOn places an "HH:MM" clock reading on day's date.
func ClockOn(day time.Time, clock, fallback string) time.Time {
	parsed, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		parsed, _ = time.Parse("15:04", fallback)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
}
