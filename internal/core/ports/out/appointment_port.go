package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
)

// AppointmentPort — контракт хранилища записей на прием.
// Ядро не знает, кто и как хранит записи.
type AppointmentPort interface {
	Save(ctx context.Context, appointment *domain.Appointment) error

	// FindByID возвращает ошибку с видом not_found, если записи нет.
	FindByID(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error)

	// FindByDoctorAndDate возвращает все записи врача за календарный день даты date.
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]domain.Appointment, error)

	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error)
}
