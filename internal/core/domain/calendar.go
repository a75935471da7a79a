package domain

import (
	"iter"
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusOccupied  SlotStatus = "occupied"
	SlotStatusBlocked   SlotStatus = "blocked"
)

// AvailabilityCalendar — сетка слотов врача на один день.
// Сетка генерируется один раз при создании и после этого не расширяется:
// время вне сетки никогда не считается доступным. Календарь — вторичная
// оптимизация, источником истины остается проверка пересечений по
// реальным записям.
type AvailabilityCalendar struct {
	DoctorID    uuid.UUID
	Date        time.Time
	Granularity Duration

	// Минуты от полуночи начала каждого слота, по возрастанию.
	starts []int
	slots  map[int]SlotStatus
}

// NewAvailabilityCalendar генерирует полную сетку слотов между open и close
// (минуты от полуночи) с фиксированным шагом. Все слоты изначально доступны.
func NewAvailabilityCalendar(doctorID uuid.UUID, date time.Time, openMinutes, closeMinutes int, granularity Duration) (*AvailabilityCalendar, error) {
	if doctorID == uuid.Nil {
		return nil, NewError(ErrInvalidArgument, "calendar.doctor_id.empty")
	}
	if date.IsZero() {
		return nil, NewError(ErrInvalidArgument, "calendar.date.empty")
	}
	if granularity.Minutes <= 0 {
		return nil, NewError(ErrInvalidArgument, "calendar.granularity.not_positive").
			WithField("minutes", granularity.Minutes)
	}
	if closeMinutes <= openMinutes {
		return nil, NewError(ErrInvalidArgument, "calendar.hours.invalid").
			WithField("open", openMinutes).
			WithField("close", closeMinutes)
	}

	calendar := &AvailabilityCalendar{
		DoctorID:    doctorID,
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		Granularity: granularity,
		slots:       make(map[int]SlotStatus),
	}

	// Слот входит в сетку целиком: начало последнего слота не позже close-шаг.
	for minutes := openMinutes; minutes+granularity.Minutes <= closeMinutes; minutes += granularity.Minutes {
		calendar.starts = append(calendar.starts, minutes)
		calendar.slots[minutes] = SlotStatusAvailable
	}

	return calendar, nil
}

func (c *AvailabilityCalendar) SlotCount() int {
	return len(c.starts)
}

// sameDate — дата времени совпадает с датой календаря.
func (c *AvailabilityCalendar) sameDate(t AppointmentTime) bool {
	y, m, d := t.Value.Date()
	cy, cm, cd := c.Date.Date()
	return y == cy && m == cm && d == cd
}

func (c *AvailabilityCalendar) slotFor(t AppointmentTime) (int, error) {
	if !c.sameDate(t) {
		return 0, NewError(ErrNotFound, "calendar.slot.date_mismatch").
			WithField("calendarDate", c.Date.Format("2006-01-02")).
			WithField("time", t.String())
	}
	minutes := t.MinutesOfDay()
	if _, ok := c.slots[minutes]; !ok {
		return 0, NewError(ErrNotFound, "calendar.slot.not_on_grid").
			WithField("time", t.String())
	}
	return minutes, nil
}

func (c *AvailabilityCalendar) MarkSlotOccupied(t AppointmentTime) error {
	minutes, err := c.slotFor(t)
	if err != nil {
		return err
	}
	c.slots[minutes] = SlotStatusOccupied
	return nil
}

func (c *AvailabilityCalendar) MarkSlotAvailable(t AppointmentTime) error {
	minutes, err := c.slotFor(t)
	if err != nil {
		return err
	}
	c.slots[minutes] = SlotStatusAvailable
	return nil
}

func (c *AvailabilityCalendar) BlockSlot(t AppointmentTime) error {
	minutes, err := c.slotFor(t)
	if err != nil {
		return err
	}
	c.slots[minutes] = SlotStatusBlocked
	return nil
}

// IsAvailableAt — false при несовпадении даты, отсутствии слота в сетке
// или любом статусе кроме available.
func (c *AvailabilityCalendar) IsAvailableAt(t AppointmentTime) bool {
	minutes, err := c.slotFor(t)
	if err != nil {
		return false
	}
	return c.slots[minutes] == SlotStatusAvailable
}

// SlotTime возвращает время начала слота по смещению в минутах от полуночи.
func (c *AvailabilityCalendar) SlotTime(minutes int) AppointmentTime {
	return AppointmentTime{Value: c.Date.Add(time.Duration(minutes) * time.Minute)}
}

// MarkIntervalOccupied помечает занятыми все слоты, пересекающие
// интервал [t, t+d). Слоты вне сетки молча игнорируются.
func (c *AvailabilityCalendar) MarkIntervalOccupied(t AppointmentTime, d Duration) {
	for _, minutes := range c.starts {
		slot := c.SlotTime(minutes)
		if slot.OverlapsWith(c.Granularity, t, d) {
			c.slots[minutes] = SlotStatusOccupied
		}
	}
}

// AvailableSlots — ленивая перезапускаемая последовательность доступных
// слотов по возрастанию времени.
func (c *AvailabilityCalendar) AvailableSlots() iter.Seq[AppointmentTime] {
	return func(yield func(AppointmentTime) bool) {
		for _, minutes := range c.starts {
			if c.slots[minutes] != SlotStatusAvailable {
				continue
			}
			if !yield(c.SlotTime(minutes)) {
				return
			}
		}
	}
}

// Clone возвращает независимую копию календаря.
func (c *AvailabilityCalendar) Clone() *AvailabilityCalendar {
	clone := &AvailabilityCalendar{
		DoctorID:    c.DoctorID,
		Date:        c.Date,
		Granularity: c.Granularity,
		starts:      make([]int, len(c.starts)),
		slots:       make(map[int]SlotStatus, len(c.slots)),
	}
	copy(clone.starts, c.starts)
	for minutes, status := range c.slots {
		clone.slots[minutes] = status
	}
	return clone
}
