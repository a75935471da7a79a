package scheduler_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
)

func (s *SchedulerService) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.appointments.FindByID(ctx, appointmentID)
}

func (s *SchedulerService) ConfirmAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, "confirm", func(a *domain.Appointment, now time.Time) (domain.Event, error) {
		return a.Confirm()
	})
}

func (s *SchedulerService) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, "cancel", func(a *domain.Appointment, now time.Time) (domain.Event, error) {
		// Поздняя отмена разрешена, но помечается флагом в событии.
		late := s.policy.IsLateCancellation(now, a.Time)
		if late {
			s.logger.Warn("booking.cancel.late", out.LogFields{
				"appointmentId":      a.ID,
				"time":               a.Time.String(),
				"minimumHoursNotice": s.policy.GetMinimumHoursNotice(),
			})
		}
		return a.Cancel(late)
	})
}

func (s *SchedulerService) CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, "complete", func(a *domain.Appointment, now time.Time) (domain.Event, error) {
		return a.Complete()
	})
}

// transition выполняет переход статуса под критической секцией уровня
// записи: конкурентные переходы по одной записи строго последовательны.
func (s *SchedulerService) transition(
	ctx context.Context,
	appointmentID uuid.UUID,
	action string,
	apply func(a *domain.Appointment, now time.Time) (domain.Event, error),
) (*domain.Appointment, error) {
	release, err := s.coordinator.Acquire(ctx, appointmentKey(appointmentID))
	if err != nil {
		return nil, err
	}
	defer release()

	appointment, err := s.appointments.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	event, err := apply(appointment, time.Now())
	if err != nil {
		s.logger.Warn("booking."+action+".rejected", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	if err := s.appointments.Save(ctx, appointment); err != nil {
		s.logger.Error("booking."+action+".save_failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return nil, err
	}

	// Отмена освобождает время врача, кэшированный календарь устарел.
	if appointment.Status == domain.AppointmentStatusCancelled {
		s.invalidateCalendar(ctx, appointment.DoctorID, appointment.Time.Date())
	}

	s.publishEvent(ctx, event)

	s.logger.Info("booking."+action+".succeeded", out.LogFields{
		"appointmentId": appointmentID,
		"status":        appointment.Status,
	})

	return appointment, nil
}
