package domain

import (
	"fmt"
	"time"
)

// DayOfWeek день недели в расписании. Закрытое перечисление:
// значения вне списка не проходят ParseDayOfWeek и не могут попасть в слот.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

// AllDaysOfWeek все дни недели в порядке с понедельника
var AllDaysOfWeek = []DayOfWeek{
	Monday,
	Tuesday,
	Wednesday,
	Thursday,
	Friday,
	Saturday,
	Sunday,
}

// ParseDayOfWeek валидирует строку как день недели
func ParseDayOfWeek(s string) (DayOfWeek, error) {
	d := DayOfWeek(s)
	for _, valid := range AllDaysOfWeek {
		if d == valid {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day of week: %q", s)
}

// DayOfWeekFromDate возвращает день недели для календарной даты.
// Ключ поиска слотов при генерации занятий.
func DayOfWeekFromDate(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// IsValid возвращает true для значения из перечисления
func (d DayOfWeek) IsValid() bool {
	for _, valid := range AllDaysOfWeek {
		if d == valid {
			return true
		}
	}
	return false
}
