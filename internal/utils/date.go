package utils

import (
	"fmt"
	"time"
)

// StartCurrentDay возвращает начало дня с сохранением таймзоны.
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartNextDay возвращает начало следующего дня с сохранением таймзоны.
func StartNextDay(t time.Time) time.Time {
	return StartCurrentDay(t.AddDate(0, 0, 1))
}

// DayKey возвращает строковый ключ календарного дня.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay — обе даты приходятся на один календарный день.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate парсит дату из строки в формате RFC3339, если не удается,
// то пробует дату со временем без таймзоны и дату без времени.
func ParseDate(str string, location *time.Location) (time.Time, error) {
	parsedDate, err := time.Parse(time.RFC3339, str)
	if err != nil {
		parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, location)
		if err != nil {
			parsedDate, err = time.ParseInLocation("2006-01-02", str, location)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse time: %v", err)
			}
		}
	}

	return parsedDate, nil
}
