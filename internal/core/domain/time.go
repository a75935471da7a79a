package domain

import (
	"time"
)

// Duration — длительность приема в минутах, всегда неотрицательная.
type Duration struct {
	Minutes int
}

func NewDuration(minutes int) (Duration, error) {
	if minutes < 0 {
		return Duration{}, NewError(ErrInvalidArgument, "duration.negative").
			WithField("minutes", minutes)
	}
	return Duration{Minutes: minutes}, nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d.Minutes) * time.Minute
}

func (d Duration) IsZero() bool {
	return d.Minutes == 0
}

func (d Duration) LessThan(other Duration) bool {
	return d.Minutes < other.Minutes
}

// AppointmentTime — точка времени приема: дата плюс время дня с точностью до минуты.
type AppointmentTime struct {
	Value time.Time
}

func NewAppointmentTime(t time.Time) (AppointmentTime, error) {
	if t.IsZero() {
		return AppointmentTime{}, NewError(ErrInvalidArgument, "appointment_time.zero")
	}
	return AppointmentTime{Value: t.Truncate(time.Minute)}, nil
}

// Date возвращает начало дня в таймзоне исходного времени.
func (t AppointmentTime) Date() time.Time {
	return time.Date(t.Value.Year(), t.Value.Month(), t.Value.Day(), 0, 0, 0, 0, t.Value.Location())
}

// MinutesOfDay возвращает смещение от полуночи в минутах.
func (t AppointmentTime) MinutesOfDay() int {
	return t.Value.Hour()*60 + t.Value.Minute()
}

func (t AppointmentTime) Add(d Duration) time.Time {
	return t.Value.Add(d.Std())
}

func (t AppointmentTime) SameDay(other AppointmentTime) bool {
	ty, tm, td := t.Value.Date()
	oy, om, od := other.Value.Date()
	return ty == oy && tm == om && td == od
}

func (t AppointmentTime) Before(other AppointmentTime) bool {
	return t.Value.Before(other.Value)
}

func (t AppointmentTime) Equal(other AppointmentTime) bool {
	return t.Value.Equal(other.Value)
}

func (t AppointmentTime) IsZero() bool {
	return t.Value.IsZero()
}

func (t AppointmentTime) IsInPast(now time.Time) bool {
	return t.Value.Before(now)
}

// OverlapsWith проверяет пересечение полуоткрытых интервалов
// [t, t+d) и [other, other+otherDur). Совпадающие начала при
// положительных длительностях пересекаются всегда.
func (t AppointmentTime) OverlapsWith(d Duration, other AppointmentTime, otherDur Duration) bool {
	start1, end1 := t.Value, t.Add(d)
	start2, end2 := other.Value, other.Add(otherDur)
	return start1.Before(end2) && start2.Before(end1)
}

func (t AppointmentTime) String() string {
	return t.Value.Format("2006-01-02 15:04")
}
