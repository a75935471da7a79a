package scheduler_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/in"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
)

type SchedulerService struct {
	appointments  out.AppointmentPort
	calendarCache out.CalendarCachePort
	events        out.EventPublisherPort
	logger        out.LoggerPort
	cfg           *config.Config

	policy      *domain.SchedulingPolicy
	granularity domain.Duration
	coordinator *BookingCoordinator
}

func NewSchedulerService(
	appointments out.AppointmentPort,
	calendarCache out.CalendarCachePort,
	events out.EventPublisherPort,
	cfg *config.Config,
	logger out.LoggerPort,
) (*SchedulerService, error) {
	policy, err := policyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &SchedulerService{
		appointments:  appointments,
		calendarCache: calendarCache,
		events:        events,
		logger:        logger.WithModule("SchedulerService"),
		cfg:           cfg,
		policy:        policy,
		granularity:   domain.Duration{Minutes: cfg.Clinic.SlotGranularityMinutes},
		coordinator:   NewBookingCoordinator(cfg.Booking.LockTimeout),
	}, nil
}

// policyFromConfig накладывает настройки клиники на политику по умолчанию.
func policyFromConfig(cfg *config.Config) (*domain.SchedulingPolicy, error) {
	openMinutes, err := cfg.OpenMinutes()
	if err != nil {
		return nil, err
	}
	closeMinutes, err := cfg.CloseMinutes()
	if err != nil {
		return nil, err
	}

	policy := domain.DefaultSchedulingPolicy()
	policy.OpenMinutes = openMinutes
	policy.CloseMinutes = closeMinutes
	policy.CloseInclusive = cfg.Clinic.CloseInclusive
	policy.MaximumDaysInAdvance = cfg.Clinic.MaxDaysInAdvance
	policy.MinimumHoursNotice = cfg.Clinic.MinHoursNotice

	return policy, nil
}

func (s *SchedulerService) ProposeAppointment(ctx context.Context, cmd in.ProposeAppointmentCommand) (*domain.Appointment, error) {
	s.logger.Info("booking.propose.started", out.LogFields{
		"doctorId":  cmd.DoctorID,
		"patientId": cmd.PatientID,
		"time":      cmd.Time.String(),
		"treatment": cmd.Treatment,
	})

	if err := s.checkBookingPolicy(time.Now(), cmd.Time, cmd.Duration, cmd.Treatment); err != nil {
		s.logger.Warn("booking.propose.policy_rejected", out.LogFields{
			"doctorId": cmd.DoctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	// Критическая секция (врач, день): повторная проверка доступности и
	// коммит выполняются строго последовательно для конкурентных запросов.
	release, err := s.coordinator.Acquire(ctx, doctorDateKey(cmd.DoctorID, cmd.Time.Date()))
	if err != nil {
		return nil, err
	}
	defer release()

	daily, err := s.appointments.FindByDoctorAndDate(ctx, cmd.DoctorID, cmd.Time.Date())
	if err != nil {
		s.logger.Error("booking.propose.fetch_failed", out.LogFields{
			"doctorId": cmd.DoctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	if err := checkNoOverlap(daily, cmd.Time, cmd.Duration, uuid.Nil); err != nil {
		s.logger.Warn("booking.propose.slot_conflict", out.LogFields{
			"doctorId": cmd.DoctorID,
			"time":     cmd.Time.String(),
		})
		return nil, err
	}

	appointment, event, err := domain.NewAppointment(
		cmd.PatientID,
		cmd.DoctorID,
		cmd.Time,
		cmd.Duration,
		cmd.Cost,
		cmd.Treatment,
	)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Save(ctx, appointment); err != nil {
		s.logger.Error("booking.propose.save_failed", out.LogFields{
			"appointmentId": appointment.ID,
			"error":         err.Error(),
		})
		return nil, err
	}

	// Кэш календаря обновляется после коммита, расхождения не страшны:
	// источник истины — записи в хранилище.
	if s.calendarCache != nil && s.cfg.Cache.Enabled {
		s.calendarCache.MarkIntervalOccupied(ctx, appointment.DoctorID, appointment.Time, appointment.Duration)
	}

	s.publishEvent(ctx, event)

	s.logger.Info("booking.propose.succeeded", out.LogFields{
		"appointmentId": appointment.ID,
		"doctorId":      appointment.DoctorID,
		"time":          appointment.Time.String(),
	})

	return appointment, nil
}

// checkBookingPolicy — статические бизнес-проверки предлагаемого времени.
func (s *SchedulerService) checkBookingPolicy(now time.Time, t domain.AppointmentTime, duration domain.Duration, treatment domain.TreatmentType) error {
	minimumDuration, err := s.policy.MinimumDurationFor(treatment)
	if err != nil {
		return err
	}

	if t.IsInPast(now) {
		return domain.NewError(domain.ErrPolicyViolation, "booking.time.in_past").
			WithField("time", t.String())
	}
	if !s.policy.IsValidAppointmentTime(t) {
		return domain.NewError(domain.ErrPolicyViolation, "booking.time.outside_business_hours").
			WithField("time", t.String())
	}
	if duration.LessThan(minimumDuration) {
		return domain.NewError(domain.ErrPolicyViolation, "booking.duration.below_minimum").
			WithField("treatment", treatment).
			WithField("minutes", duration.Minutes).
			WithField("minimumMinutes", minimumDuration.Minutes)
	}
	if !s.policy.WithinBookingWindow(now, t) {
		return domain.NewError(domain.ErrPolicyViolation, "booking.window.exceeded").
			WithField("maxDaysInAdvance", s.policy.GetMaximumDaysInAdvance())
	}
	if !s.policy.HasSufficientLeadTime(now, t, treatment) {
		return domain.NewError(domain.ErrPolicyViolation, "booking.advance_notice.insufficient").
			WithField("treatment", treatment).
			WithField("minimumLeadDays", s.policy.MinimumLeadDaysFor(treatment))
	}

	return nil
}

func (s *SchedulerService) publishEvent(ctx context.Context, event domain.Event) {
	if event == nil || s.events == nil {
		return
	}

	// Ошибка публикации не откатывает бронирование.
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("booking.event.publish_failed", out.LogFields{
			"event": event.EventName(),
			"error": err.Error(),
		})
	}
}
