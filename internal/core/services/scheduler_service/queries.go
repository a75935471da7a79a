package scheduler_service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
)

func (s *SchedulerService) ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	if patientID == uuid.Nil {
		return nil, domain.NewError(domain.ErrInvalidArgument, "appointments.list.patient_id.empty")
	}

	appointments, err := s.appointments.FindByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	sortByTime(appointments)
	return appointments, nil
}

func (s *SchedulerService) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error) {
	if doctorID == uuid.Nil {
		return nil, domain.NewError(domain.ErrInvalidArgument, "appointments.list.doctor_id.empty")
	}

	appointments, err := s.appointments.FindByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	sortByTime(appointments)
	return appointments, nil
}

// sortByTime упорядочивает записи по времени начала. Хранилище в памяти
// порядок не гарантирует, postgres сортирует сам, сортировка идемпотентна.
func sortByTime(appointments []domain.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].Time.Before(appointments[j].Time)
	})
}
