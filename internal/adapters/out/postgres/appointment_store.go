package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

// DDL таблицы записей, безопасно выполнять повторно.
const migrationAppointments = `
CREATE TABLE IF NOT EXISTS appointments (
    id               UUID PRIMARY KEY,
    patient_id       UUID        NOT NULL,
    doctor_id        UUID        NOT NULL,
    start_at         TIMESTAMPTZ NOT NULL,
    duration_minutes INT         NOT NULL,
    cost_amount      BIGINT      NOT NULL,
    cost_currency    TEXT        NOT NULL,
    treatment        TEXT        NOT NULL,
    status           TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_appointments_doctor_start
    ON appointments (doctor_id, start_at);

CREATE INDEX IF NOT EXISTS idx_appointments_patient
    ON appointments (patient_id);
`

// AppointmentStore — постоянное хранилище записей на pgx.
type AppointmentStore struct {
	pool   *pgxpool.Pool
	logger out.LoggerPort
}

func NewAppointmentStore(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*AppointmentStore, error) {
	pool, err := pgxpool.New(ctx, cfg.Storage.PostgresURL)
	if err != nil {
		logger.Error("postgres.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("postgres.connect.failed: %w", err)
	}

	return &AppointmentStore{
		pool:   pool,
		logger: logger.WithModule("PgAppointmentStore"),
	}, nil
}

// Migrate создает схему при старте приложения.
func (s *AppointmentStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationAppointments); err != nil {
		return fmt.Errorf("postgres.migrate.failed: %w", err)
	}
	return nil
}

func (s *AppointmentStore) Close() {
	s.pool.Close()
}

func (s *AppointmentStore) Save(ctx context.Context, appointment *domain.Appointment) error {
	const query = `INSERT INTO appointments
    (id, patient_id, doctor_id, start_at, duration_minutes, cost_amount, cost_currency, treatment, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET start_at = EXCLUDED.start_at,
                               status   = EXCLUDED.status`

	start, _ := appointment.Interval()

	_, err := s.pool.Exec(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		start,
		appointment.Duration.Minutes,
		appointment.Cost.Amount,
		appointment.Cost.Currency,
		appointment.Treatment,
		appointment.Status,
	)
	if err != nil {
		s.logger.Error("postgres.save.failed", out.LogFields{
			"appointmentId": appointment.ID,
			"error":         err.Error(),
		})
		return fmt.Errorf("postgres.save.failed: %w", err)
	}

	return nil
}

func (s *AppointmentStore) FindByID(ctx context.Context, appointmentID uuid.UUID) (*domain.Appointment, error) {
	const query = `SELECT id, patient_id, doctor_id, start_at, duration_minutes, cost_amount, cost_currency, treatment, status
FROM appointments WHERE id = $1`

	appointment, err := scanAppointment(s.pool.QueryRow(ctx, query, appointmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewError(domain.ErrNotFound, "appointment.not_found").
				WithField("appointmentId", appointmentID)
		}
		return nil, fmt.Errorf("postgres.find_by_id.failed: %w", err)
	}

	return appointment, nil
}

func (s *AppointmentStore) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]domain.Appointment, error) {
	const query = `SELECT id, patient_id, doctor_id, start_at, duration_minutes, cost_amount, cost_currency, treatment, status
FROM appointments
WHERE doctor_id = $1 AND start_at >= $2 AND start_at < $3
ORDER BY start_at`

	dayStart := utils.StartCurrentDay(date)
	dayEnd := utils.StartNextDay(date)

	return s.queryAppointments(ctx, query, doctorID, dayStart, dayEnd)
}

func (s *AppointmentStore) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	const query = `SELECT id, patient_id, doctor_id, start_at, duration_minutes, cost_amount, cost_currency, treatment, status
FROM appointments WHERE patient_id = $1 ORDER BY start_at`

	return s.queryAppointments(ctx, query, patientID)
}

func (s *AppointmentStore) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.Appointment, error) {
	const query = `SELECT id, patient_id, doctor_id, start_at, duration_minutes, cost_amount, cost_currency, treatment, status
FROM appointments WHERE doctor_id = $1 ORDER BY start_at`

	return s.queryAppointments(ctx, query, doctorID)
}

func (s *AppointmentStore) queryAppointments(ctx context.Context, query string, args ...any) ([]domain.Appointment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.query.failed: %w", err)
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres.scan.failed: %w", err)
		}
		result = append(result, *appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.rows.failed: %w", err)
	}

	return result, nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		appointment     domain.Appointment
		startAt         time.Time
		durationMinutes int
	)

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&startAt,
		&durationMinutes,
		&appointment.Cost.Amount,
		&appointment.Cost.Currency,
		&appointment.Treatment,
		&appointment.Status,
	)
	if err != nil {
		return nil, err
	}

	appointment.Time = domain.AppointmentTime{Value: startAt}
	appointment.Duration = domain.Duration{Minutes: durationMinutes}

	return &appointment, nil
}
