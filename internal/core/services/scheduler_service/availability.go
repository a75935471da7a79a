package scheduler_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

// checkNoOverlap — авторитетная проверка конфликтов: предлагаемый интервал
// не должен пересекаться ни с одной активной записью врача за день.
// Запись с идентификатором exclude исключается из сравнения (перенос
// исключает сам себя по идентичности, не по совпадению времени).
func checkNoOverlap(daily []domain.Appointment, t domain.AppointmentTime, duration domain.Duration, exclude uuid.UUID) error {
	for i := range daily {
		existing := &daily[i]
		if existing.ID == exclude {
			continue
		}
		if !existing.IsActive() {
			continue
		}
		if t.OverlapsWith(duration, existing.Time, existing.Duration) {
			return domain.NewError(domain.ErrSlotConflict, "booking.slot.conflict").
				WithField("conflictingAppointmentId", existing.ID).
				WithField("conflictingTime", existing.Time.String())
		}
	}
	return nil
}

// IsSlotAvailable отвечает, свободен ли у врача интервал [t, t+duration).
func (s *SchedulerService) IsSlotAvailable(ctx context.Context, doctorID uuid.UUID, t domain.AppointmentTime, duration domain.Duration) (bool, error) {
	if !s.policy.IsValidAppointmentTime(t) {
		return false, nil
	}

	daily, err := s.appointments.FindByDoctorAndDate(ctx, doctorID, t.Date())
	if err != nil {
		return false, err
	}

	return checkNoOverlap(daily, t, duration, uuid.Nil) == nil, nil
}

// CanRescheduleAppointment — та же проверка, но переносимая запись
// исключается из сравнения по своему идентификатору.
func (s *SchedulerService) CanRescheduleAppointment(ctx context.Context, doctorID uuid.UUID, appointmentID uuid.UUID, newTime domain.AppointmentTime, duration domain.Duration) (bool, error) {
	if !s.policy.IsValidAppointmentTime(newTime) {
		return false, nil
	}

	daily, err := s.appointments.FindByDoctorAndDate(ctx, doctorID, newTime.Date())
	if err != nil {
		return false, err
	}

	return checkNoOverlap(daily, newTime, duration, appointmentID) == nil, nil
}

func (s *SchedulerService) QueryAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, duration domain.Duration) ([]domain.AppointmentTime, error) {
	if doctorID == uuid.Nil {
		return nil, domain.NewError(domain.ErrInvalidArgument, "slots.query.doctor_id.empty")
	}
	if duration.Minutes <= 0 {
		return nil, domain.NewError(domain.ErrInvalidArgument, "slots.query.duration.not_positive").
			WithField("minutes", duration.Minutes)
	}

	day := utils.StartCurrentDay(date)

	daily, err := s.appointments.FindByDoctorAndDate(ctx, doctorID, day)
	if err != nil {
		s.logger.Error("slots.query.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	calendar, err := s.calendarFor(ctx, doctorID, day, daily)
	if err != nil {
		return nil, err
	}

	// Сетка календаря — грубый фильтр, каждый кандидат дополнительно
	// проходит авторитетную проверку пересечений.
	slots := make([]domain.AppointmentTime, 0, calendar.SlotCount())
	for slot := range calendar.AvailableSlots() {
		if checkNoOverlap(daily, slot, duration, uuid.Nil) != nil {
			continue
		}
		slots = append(slots, slot)
	}

	s.logger.Debug("slots.query.succeeded", out.LogFields{
		"doctorId":   doctorID,
		"date":       utils.DayKey(day),
		"slotsCount": len(slots),
	})

	return slots, nil
}

// calendarFor возвращает календарь из кэша или строит его заново по
// записям за день.
func (s *SchedulerService) calendarFor(ctx context.Context, doctorID uuid.UUID, day time.Time, daily []domain.Appointment) (*domain.AvailabilityCalendar, error) {
	cacheEnabled := s.calendarCache != nil && s.cfg.Cache.Enabled

	if cacheEnabled {
		if calendar, exists := s.calendarCache.GetCalendar(ctx, doctorID, day); exists {
			s.logger.Debug("slots.calendar.cache.hit", out.LogFields{
				"doctorId": doctorID,
				"date":     utils.DayKey(day),
			})
			return calendar, nil
		}
	}

	calendar, err := domain.NewAvailabilityCalendar(doctorID, day, s.policy.OpenMinutes, s.policy.CloseMinutes, s.granularity)
	if err != nil {
		return nil, err
	}

	for i := range daily {
		appointment := &daily[i]
		if !appointment.IsActive() {
			continue
		}
		calendar.MarkIntervalOccupied(appointment.Time, appointment.Duration)
	}

	if cacheEnabled {
		s.calendarCache.StoreCalendar(ctx, calendar)
	}

	return calendar, nil
}

func (s *SchedulerService) invalidateCalendar(ctx context.Context, doctorID uuid.UUID, day time.Time) {
	if s.calendarCache == nil || !s.cfg.Cache.Enabled {
		return
	}
	s.calendarCache.InvalidateCalendar(ctx, doctorID, day)
}
