package domain

import "time"

// TreatmentRule — правила планирования для одного вида лечения.
type TreatmentRule struct {
	MinimumDuration Duration
	// Требует ли вид лечения предварительной записи и за сколько дней минимум.
	RequiresAdvanceBooking bool
	MinimumLeadDays        int
	// Экстренные виды лечения освобождены от правил предварительной записи.
	Emergency bool
}

// SchedulingPolicy — чистые бизнес-правила планирования.
// Не обращается к хранилищу и не имеет собственного состояния.
type SchedulingPolicy struct {
	// Рабочие часы клиники: минуты от полуночи.
	OpenMinutes  int
	CloseMinutes int
	// Считается ли время закрытия допустимым началом приема.
	CloseInclusive bool

	MaximumDaysInAdvance int
	MinimumHoursNotice   int

	Rules map[TreatmentType]TreatmentRule
}

// DefaultSchedulingPolicy возвращает политику с настройками клиники по умолчанию:
// часы работы 08:00-18:00, окно записи 90 дней, отмена за 24 часа.
func DefaultSchedulingPolicy() *SchedulingPolicy {
	return &SchedulingPolicy{
		OpenMinutes:          8 * 60,
		CloseMinutes:         18 * 60,
		CloseInclusive:       true,
		MaximumDaysInAdvance: 90,
		MinimumHoursNotice:   24,
		Rules: map[TreatmentType]TreatmentRule{
			TreatmentConsultation: {MinimumDuration: Duration{Minutes: 30}, Emergency: true},
			TreatmentCleaning:     {MinimumDuration: Duration{Minutes: 60}},
			TreatmentFilling:      {MinimumDuration: Duration{Minutes: 45}},
			TreatmentExtraction:   {MinimumDuration: Duration{Minutes: 30}, Emergency: true},
			TreatmentRootCanal:    {MinimumDuration: Duration{Minutes: 90}, Emergency: true},
			TreatmentCrown:        {MinimumDuration: Duration{Minutes: 120}, RequiresAdvanceBooking: true, MinimumLeadDays: 3},
			TreatmentBridge:       {MinimumDuration: Duration{Minutes: 150}, RequiresAdvanceBooking: true, MinimumLeadDays: 3},
			TreatmentImplant:      {MinimumDuration: Duration{Minutes: 180}, RequiresAdvanceBooking: true, MinimumLeadDays: 7},
			TreatmentOrthodontics: {MinimumDuration: Duration{Minutes: 60}, RequiresAdvanceBooking: true, MinimumLeadDays: 3},
			TreatmentPeriodontal:  {MinimumDuration: Duration{Minutes: 75}},
		},
	}
}

// IsValidAppointmentTime проверяет попадание времени начала в рабочие часы.
func (p *SchedulingPolicy) IsValidAppointmentTime(t AppointmentTime) bool {
	minutes := t.MinutesOfDay()
	if minutes < p.OpenMinutes {
		return false
	}
	if p.CloseInclusive {
		return minutes <= p.CloseMinutes
	}
	return minutes < p.CloseMinutes
}

func (p *SchedulingPolicy) MinimumDurationFor(treatment TreatmentType) (Duration, error) {
	rule, ok := p.Rules[treatment]
	if !ok {
		return Duration{}, NewError(ErrInvalidArgument, "policy.treatment.unknown").
			WithField("treatment", treatment)
	}
	return rule.MinimumDuration, nil
}

func (p *SchedulingPolicy) RequiresAdvanceBooking(treatment TreatmentType) bool {
	return p.Rules[treatment].RequiresAdvanceBooking
}

func (p *SchedulingPolicy) MinimumLeadDaysFor(treatment TreatmentType) int {
	return p.Rules[treatment].MinimumLeadDays
}

func (p *SchedulingPolicy) AllowsEmergencyAppointment(treatment TreatmentType) bool {
	return p.Rules[treatment].Emergency
}

func (p *SchedulingPolicy) GetMaximumDaysInAdvance() int {
	return p.MaximumDaysInAdvance
}

func (p *SchedulingPolicy) GetMinimumHoursNotice() int {
	return p.MinimumHoursNotice
}

// WithinBookingWindow проверяет, что запись не выходит за максимальное окно записи.
func (p *SchedulingPolicy) WithinBookingWindow(now time.Time, t AppointmentTime) bool {
	limit := now.AddDate(0, 0, p.MaximumDaysInAdvance)
	return !t.Value.After(limit)
}

// HasSufficientLeadTime проверяет минимальный срок предварительной записи
// для видов лечения, которым она требуется.
func (p *SchedulingPolicy) HasSufficientLeadTime(now time.Time, t AppointmentTime, treatment TreatmentType) bool {
	rule := p.Rules[treatment]
	if !rule.RequiresAdvanceBooking || rule.Emergency {
		return true
	}
	earliest := now.AddDate(0, 0, rule.MinimumLeadDays)
	return !t.Value.Before(earliest)
}

// IsLateCancellation — отмена ближе минимального срока уведомления.
// Такая отмена разрешена, но помечается флагом в событии.
func (p *SchedulingPolicy) IsLateCancellation(now time.Time, t AppointmentTime) bool {
	notice := time.Duration(p.MinimumHoursNotice) * time.Hour
	return t.Value.Sub(now) < notice
}
