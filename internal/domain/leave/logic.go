package leave

import (
	"errors"
	"time"

	"adminportal/internal/domain/forms"
)

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	start = dateOnly(start)
	end = dateOnly(end)
	return end.Sub(start).Hours()/24 + 1, nil
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func combine(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

// checkRange rejects a draft whose end precedes its start. Incomplete
// drafts pass; required checks happen on submit.
func checkRange(f *forms.Form) error {
	startDay, ok1 := f.Time(KeyStartDate)
	endDay, ok2 := f.Time(KeyEndDate)
	if !ok1 || !ok2 {
		return nil
	}
	if dateOnly(endDay).Before(dateOnly(startDay)) {
		return forms.Invalid(KeyEndDate, "結束日期不可早於開始日期")
	}
	startClock, ok1 := f.Time(KeyStartTime)
	endClock, ok2 := f.Time(KeyEndTime)
	if !ok1 || !ok2 {
		return nil
	}
	if combine(endDay, endClock).Before(combine(startDay, startClock)) {
		return forms.Invalid(KeyEndTime, "結束時間不可早於開始時間")
	}
	return nil
}
