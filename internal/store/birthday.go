package store

import (
	"fmt"
	"time"
)

// BirthdayWindowDays is the length of the upcoming birthdays report. The window reaches from
// today up to and including today plus this many days.
const BirthdayWindowDays = 7

// birthdayWindow is a range of days of the year, compared by month and day only.
type birthdayWindow struct {
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

func newBirthdayWindow(today time.Time) birthdayWindow {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, BirthdayWindowDays)
	return birthdayWindow{
		startMonth: start.Month(),
		startDay:   start.Day(),
		endMonth:   end.Month(),
		endDay:     end.Day(),
	}
}

// contains reports whether a birthday on the given month and day lies within the window.
func (w birthdayWindow) contains(month time.Month, day int) bool {
	if w.startMonth == w.endMonth {
		return month == w.startMonth && day >= w.startDay && day <= w.endDay
	}
	if month == w.startMonth && day >= w.startDay {
		return true
	}
	if month == w.endMonth && day <= w.endDay {
		return true
	}
	if w.startMonth < w.endMonth {
		return month > w.startMonth && month < w.endMonth
	}
	// the window wraps from December into January
	return month > w.startMonth || month < w.endMonth
}

// where returns the SQL condition equivalent to contains for the given date column.
func (w birthdayWindow) where(column string) (string, []any) {
	month := fmt.Sprintf("MONTH(%s)", column)
	day := fmt.Sprintf("DAY(%s)", column)
	if w.startMonth == w.endMonth {
		return fmt.Sprintf("(%s = ? AND %s BETWEEN ? AND ?)", month, day),
			[]any{int(w.startMonth), w.startDay, w.endDay}
	}
	between := fmt.Sprintf("(%s > ? AND %s < ?)", month, month)
	if w.startMonth > w.endMonth {
		between = fmt.Sprintf("(%s > ? OR %s < ?)", month, month)
	}
	sql := fmt.Sprintf("((%s = ? AND %s >= ?) OR (%s = ? AND %s <= ?) OR %s)",
		month, day, month, day, between)
	args := []any{
		int(w.startMonth), w.startDay,
		int(w.endMonth), w.endDay,
		int(w.startMonth), int(w.endMonth),
	}
	return sql, args
}
