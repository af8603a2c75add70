package yoy

import "time"

// ProgramYearStart is the configured start of the program year, a fiscal
// boundary independent of the calendar year.
type ProgramYearStart struct {
	Month time.Month
	Day   int
}

// YearOf assigns a date to a program year. Program years are labeled by the
// calendar year they end in: with an October 1 start, December 2024 falls in
// program year 2025. A January 1 start degenerates to the calendar year.
func (s ProgramYearStart) YearOf(t time.Time) int {
	if s.Month == time.January && s.Day == 1 {
		return t.Year()
	}
	boundary := time.Date(t.Year(), s.Month, s.Day, 0, 0, 0, 0, t.Location())
	if t.Before(boundary) {
		return t.Year()
	}
	return t.Year() + 1
}
