package scheduler_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
)

func (s *SchedulerService) RescheduleAppointment(ctx context.Context, appointmentID uuid.UUID, newTime domain.AppointmentTime) (*domain.Appointment, error) {
	s.logger.Info("booking.reschedule.started", out.LogFields{
		"appointmentId": appointmentID,
		"newTime":       newTime.String(),
	})

	// Порядок захвата ключей фиксированный: сначала запись, потом
	// (врач, день). Обратного порядка нет нигде, дедлок невозможен.
	releaseAppointment, err := s.coordinator.Acquire(ctx, appointmentKey(appointmentID))
	if err != nil {
		return nil, err
	}
	defer releaseAppointment()

	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingPolicy(time.Now(), newTime, appointment.Duration, appointment.Treatment); err != nil {
		s.logger.Warn("booking.reschedule.policy_rejected", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	releaseDay, err := s.coordinator.Acquire(ctx, doctorDateKey(appointment.DoctorID, newTime.Date()))
	if err != nil {
		return nil, err
	}
	defer releaseDay()

	daily, err := s.appointments.FindByDoctorAndDate(ctx, appointment.DoctorID, newTime.Date())
	if err != nil {
		s.logger.Error("booking.reschedule.fetch_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	// Исключаем переносимую запись по идентификатору: совпадение времени
	// с чужой записью конфликтом остается.
	if err := checkNoOverlap(daily, newTime, appointment.Duration, appointment.ID); err != nil {
		s.logger.Warn("booking.reschedule.slot_conflict", out.LogFields{
			"appointmentId": appointmentID,
			"newTime":       newTime.String(),
		})
		return nil, err
	}

	oldDay := appointment.Time.Date()

	event, err := appointment.Reschedule(newTime)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Save(ctx, appointment); err != nil {
		s.logger.Error("booking.reschedule.save_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	s.invalidateCalendar(ctx, appointment.DoctorID, oldDay)
	s.invalidateCalendar(ctx, appointment.DoctorID, newTime.Date())

	s.publishEvent(ctx, event)

	s.logger.Info("booking.reschedule.succeeded", out.LogFields{
		"appointmentId": appointmentID,
		"newTime":       newTime.String(),
	})

	return appointment, nil
}
