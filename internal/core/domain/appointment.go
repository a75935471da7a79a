package domain

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Допустимые переходы статусов. Из терминальных статусов переходов нет.
var allowedTransitions = map[AppointmentStatus]map[AppointmentStatus]struct{}{
	AppointmentStatusScheduled: {
		AppointmentStatusConfirmed: {},
		AppointmentStatusCancelled: {},
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusCompleted: {},
		AppointmentStatusCancelled: {},
	},
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

func (s AppointmentStatus) canTransitionTo(next AppointmentStatus) bool {
	_, ok := allowedTransitions[s][next]
	return ok
}

// Appointment — агрегат записи на прием. Идентичность и участники
// неизменяемы после создания, меняются только статус и время приема.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Time      AppointmentTime
	Duration  Duration
	Cost      Money
	Treatment TreatmentType
	Status    AppointmentStatus
}

func NewAppointment(
	patientID uuid.UUID,
	doctorID uuid.UUID,
	t AppointmentTime,
	duration Duration,
	cost Money,
	treatment TreatmentType,
) (*Appointment, Event, error) {
	if patientID == uuid.Nil {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.patient_id.empty")
	}
	if doctorID == uuid.Nil {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.doctor_id.empty")
	}
	if t.IsZero() {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.time.empty")
	}
	if duration.Minutes <= 0 {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.duration.not_positive").
			WithField("minutes", duration.Minutes)
	}
	if cost.Currency == "" {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.cost.currency.empty")
	}
	if _, ok := treatmentTypes[treatment]; !ok {
		return nil, nil, NewError(ErrInvalidArgument, "appointment.treatment.unknown").
			WithField("treatment", treatment)
	}

	appointment := &Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Time:      t,
		Duration:  duration,
		Cost:      cost,
		Treatment: treatment,
		Status:    AppointmentStatusScheduled,
	}

	event := AppointmentScheduledEvent{
		AppointmentID: appointment.ID,
		PatientID:     patientID,
		DoctorID:      doctorID,
		StartTime:     t.Value,
		Duration:      duration.Minutes,
		Treatment:     treatment,
		At:            time.Now(),
	}

	return appointment, event, nil
}

// Interval возвращает занимаемый интервал [start, end).
func (a *Appointment) Interval() (time.Time, time.Time) {
	return a.Time.Value, a.Time.Add(a.Duration)
}

// IsActive — запись занимает время врача (не отменена).
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled
}

func (a *Appointment) Confirm() (Event, error) {
	return a.transitionTo(AppointmentStatusConfirmed, false)
}

// Cancel переводит запись в отмененные. Флаг late помечает отмену
// позже минимального срока уведомления, сама отмена при этом разрешена.
func (a *Appointment) Cancel(late bool) (Event, error) {
	return a.transitionTo(AppointmentStatusCancelled, late)
}

func (a *Appointment) Complete() (Event, error) {
	return a.transitionTo(AppointmentStatusCompleted, false)
}

// Reschedule переносит запись на новое время, статус не меняется.
func (a *Appointment) Reschedule(newTime AppointmentTime) (Event, error) {
	if newTime.IsZero() {
		return nil, NewError(ErrInvalidArgument, "appointment.reschedule.time.empty")
	}
	if a.Status.IsTerminal() {
		return nil, NewError(ErrInvalidStateTransition, "appointment.reschedule.terminal_status").
			WithField("appointmentId", a.ID).
			WithField("status", a.Status)
	}

	oldTime := a.Time
	a.Time = newTime

	return AppointmentRescheduledEvent{
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		OldStartTime:  oldTime.Value,
		NewStartTime:  newTime.Value,
		At:            time.Now(),
	}, nil
}

func (a *Appointment) transitionTo(next AppointmentStatus, late bool) (Event, error) {
	if !a.Status.canTransitionTo(next) {
		return nil, NewError(ErrInvalidStateTransition, "appointment.status.transition_not_allowed").
			WithField("appointmentId", a.ID).
			WithField("from", a.Status).
			WithField("to", next)
	}

	from := a.Status
	a.Status = next

	return AppointmentStatusChangedEvent{
		AppointmentID: a.ID,
		DoctorID:      a.DoctorID,
		From:          from,
		To:            next,
		Late:          late,
		At:            time.Now(),
	}, nil
}

// Clone возвращает независимую копию агрегата.
func (a *Appointment) Clone() *Appointment {
	clone := *a
	return &clone
}
