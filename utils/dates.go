package utils

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var ErrInvalidPeriod = errors.New("period must be week, month or year")

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// StartOfWeek returns the Monday of t's ISO week.
func StartOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return DateOnly(t).AddDate(0, 0, -(wd - 1))
}

// PeriodFloor returns the first day of the week, month or year containing
// today. An empty period has no floor and returns the zero time.
func PeriodFloor(period string, today time.Time) (time.Time, error) {
	today = DateOnly(today)
	switch period {
	case "":
		return time.Time{}, nil
	case PeriodWeek:
		return StartOfWeek(today), nil
	case PeriodMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case PeriodYear:
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidPeriod
}
