package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

// AppointmentStore — хранилище записей в памяти, для локального запуска
// и тестов. Хранит и отдает копии агрегатов, чтобы мутации снаружи не
// попадали в хранилище мимо Save.
type AppointmentStore struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*domain.Appointment
	logger       out.LoggerPort
}

func NewAppointmentStore(logger out.LoggerPort) *AppointmentStore {
	return &AppointmentStore{
		appointments: make(map[uuid.UUID]*domain.Appointment),
		logger:       logger.WithModule("MemAppointmentStore"),
	}
}

func (s *AppointmentStore) Save(ctx context.Context, appointment *domain.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments[appointment.ID] = appointment.Clone()

	s.logger.Debug("memstore.save", out.LogFields{
		"appointmentId": appointment.ID,
		"status":        appointment.Status,
	})

	return nil
}

func (s *AppointmentStore) FindByID(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appointment, exists := s.appointments[appointmentID]
	if !exists {
		return nil, domain.NewError(domain.ErrNotFound, "appointment.not_found").
			WithField("appointmentId", appointmentID)
	}

	return appointment.Clone(), nil
}

func (s *AppointmentStore) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Appointment
	for _, appointment := range s.appointments {
		if appointment.DoctorID != doctorID {
			continue
		}
		if !utils.SameDay(appointment.Time.Value, date) {
			continue
		}
		result = append(result, *appointment.Clone())
	}

	return result, nil
}

func (s *AppointmentStore) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Appointment
	for _, appointment := range s.appointments {
		if appointment.PatientID == patientID {
			result = append(result, *appointment.Clone())
		}
	}

	return result, nil
}

func (s *AppointmentStore) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Appointment
	for _, appointment := range s.appointments {
		if appointment.DoctorID == doctorID {
			result = append(result, *appointment.Clone())
		}
	}

	return result, nil
}
