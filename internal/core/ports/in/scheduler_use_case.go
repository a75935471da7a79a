package in

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
)

type ProposeAppointmentCommand struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Time      domain.AppointmentTime
	Duration  domain.Duration
	Treatment domain.TreatmentType
	Cost      domain.Money
}

type SchedulerUseCase interface {
	// Создание записи: проверка политики, проверка доступности и
	// коммит под критической секцией (врач, день).
	ProposeAppointment(ctx context.Context, cmd ProposeAppointmentCommand) (*domain.Appointment, error)

	// Перенос записи на новое время, запись исключается из проверки
	// пересечений по своему идентификатору.
	RescheduleAppointment(ctx context.Context, appointmentID uuid.UUID, newTime domain.AppointmentTime) (*domain.Appointment, error)

	// Переходы статусов под критической секцией уровня записи.
	ConfirmAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error)
	CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error)

	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error)

	// История записей пациента и все записи врача, по возрастанию времени.
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error)

	// Свободные времена начала для записи указанной длительности.
	QueryAvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, duration domain.Duration) ([]domain.AppointmentTime, error)
}
