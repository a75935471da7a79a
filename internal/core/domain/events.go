package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event — доменное событие. Операции над агрегатом возвращают события
// явно, диспетчеризацией занимается вызывающий слой.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

type AppointmentScheduledEvent struct {
	AppointmentID uuid.UUID     `json:"appointmentId"`
	PatientID     uuid.UUID     `json:"patientId"`
	DoctorID      uuid.UUID     `json:"doctorId"`
	StartTime     time.Time     `json:"startTime"`
	Duration      int           `json:"durationMinutes"`
	Treatment     TreatmentType `json:"treatment"`
	At            time.Time     `json:"occurredAt"`
}

func (e AppointmentScheduledEvent) EventName() string     { return "appointment.scheduled" }
func (e AppointmentScheduledEvent) OccurredAt() time.Time { return e.At }

type AppointmentRescheduledEvent struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	DoctorID      uuid.UUID `json:"doctorId"`
	OldStartTime  time.Time `json:"oldStartTime"`
	NewStartTime  time.Time `json:"newStartTime"`
	At            time.Time `json:"occurredAt"`
}

func (e AppointmentRescheduledEvent) EventName() string     { return "appointment.rescheduled" }
func (e AppointmentRescheduledEvent) OccurredAt() time.Time { return e.At }

type AppointmentStatusChangedEvent struct {
	AppointmentID uuid.UUID         `json:"appointmentId"`
	DoctorID      uuid.UUID         `json:"doctorId"`
	From          AppointmentStatus `json:"from"`
	To            AppointmentStatus `json:"to"`
	// Отмена позже минимального срока уведомления.
	Late bool      `json:"late,omitempty"`
	At   time.Time `json:"occurredAt"`
}

func (e AppointmentStatusChangedEvent) EventName() string {
	return "appointment." + string(e.To)
}

func (e AppointmentStatusChangedEvent) OccurredAt() time.Time { return e.At }
