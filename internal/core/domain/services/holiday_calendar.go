package services

import "time"

// HolidayCalendar answers whether a date falls on a demand-shifting US
// holiday. The calendar is rule-based: fixed dates plus the floating
// Monday/Thursday holidays, so no data source is needed.
type HolidayCalendar struct{}

// NewHolidayCalendar creates a calendar instance.
func NewHolidayCalendar() HolidayCalendar {
	return HolidayCalendar{}
}

// IsHoliday reports whether the date is a recognized holiday.
func (c HolidayCalendar) IsHoliday(date time.Time) bool {
	month, day := date.Month(), date.Day()

	switch {
	case month == time.January && day == 1: // New Year's Day
		return true
	case month == time.July && day == 4: // Independence Day
		return true
	case month == time.November && day == 11: // Veterans Day
		return true
	case month == time.December && (day == 24 || day == 25 || day == 31):
		return true
	}

	switch {
	case c.isNthWeekday(date, time.January, time.Monday, 3): // MLK Day
		return true
	case c.isNthWeekday(date, time.February, time.Monday, 3): // Presidents' Day
		return true
	case c.isLastWeekday(date, time.May, time.Monday): // Memorial Day
		return true
	case c.isNthWeekday(date, time.September, time.Monday, 1): // Labor Day
		return true
	case c.isNthWeekday(date, time.November, time.Thursday, 4): // Thanksgiving
		return true
	}

	return false
}

// isNthWeekday reports whether date is the nth given weekday of the month.
func (c HolidayCalendar) isNthWeekday(date time.Time, month time.Month, weekday time.Weekday, n int) bool {
	if date.Month() != month || date.Weekday() != weekday {
		return false
	}
	return (date.Day()-1)/7 == n-1
}

// isLastWeekday reports whether date is the last given weekday of the month.
func (c HolidayCalendar) isLastWeekday(date time.Time, month time.Month, weekday time.Weekday) bool {
	if date.Month() != month || date.Weekday() != weekday {
		return false
	}
	return date.AddDate(0, 0, 7).Month() != month
}
