// Package recurrence computes the next due date of a recurring payment.
package recurrence

import (
	"fmt"
	"time"

	"github.com/LeventeLantos/recurring-payments/internal/model"
)

// NextDueDate adds exactly one calendar unit of f to t. Monthly and yearly
// steps clamp the day to the last valid day of the target month, so
// Jan 31 + 1 month is Feb 28 (or 29) and Feb 29 + 1 year is Feb 28.
func NextDueDate(t time.Time, f model.Frequency) (time.Time, error) {
	switch f {
	case model.Daily:
		return t.AddDate(0, 0, 1), nil
	case model.Weekly:
		return t.AddDate(0, 0, 7), nil
	case model.Monthly:
		return addMonthsClamped(t, 1), nil
	case model.Yearly:
		return addMonthsClamped(t, 12), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", f)
	}
}

// time.AddDate normalizes overflow (Jan 31 + 1 month = Mar 3), which is not what we want.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := first.Date()

	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
