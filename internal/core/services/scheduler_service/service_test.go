package scheduler_service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/adapters/out/memstore"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/in"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
)

type nopLogger struct{}

func (l nopLogger) Debug(event string, fields out.LogFields) {}
func (l nopLogger) Info(event string, fields out.LogFields)  {}
func (l nopLogger) Warn(event string, fields out.LogFields)  {}
func (l nopLogger) Error(event string, fields out.LogFields) {}

func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

func newTestService(t *testing.T) *SchedulerService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Clinic.OpenTime = "08:00"
	cfg.Clinic.CloseTime = "18:00"
	cfg.Clinic.CloseInclusive = true
	cfg.Clinic.SlotGranularityMinutes = 30
	cfg.Clinic.MaxDaysInAdvance = 90
	cfg.Clinic.MinHoursNotice = 24
	cfg.Booking.LockTimeout = 3 * time.Second

	store := memstore.NewAppointmentStore(nopLogger{})

	service, err := NewSchedulerService(store, nil, nil, cfg, nopLogger{})
	if err != nil {
		t.Fatalf("service init failed: %v", err)
	}

	return service
}

// futureAt — время на hour:minute через days дней от сегодня.
func futureAt(days, hour, minute int) domain.AppointmentTime {
	day := time.Now().AddDate(0, 0, days)
	return domain.AppointmentTime{
		Value: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local),
	}
}

func proposeCommand(doctorID uuid.UUID, t domain.AppointmentTime, minutes int) in.ProposeAppointmentCommand {
	return in.ProposeAppointmentCommand{
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		Time:      t,
		Duration:  domain.Duration{Minutes: minutes},
		Treatment: domain.TreatmentConsultation,
		Cost:      domain.Money{Amount: 5000, Currency: "RUB"},
	}
}

func TestProposeAppointment(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()

	appointment, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 0), 30))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if appointment.Status != domain.AppointmentStatusScheduled {
		t.Errorf("expected scheduled status, got %s", appointment.Status)
	}

	stored, err := service.GetAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.Time.Equal(appointment.Time) {
		t.Errorf("stored time mismatch: %s vs %s", stored.Time, appointment.Time)
	}
}

func TestProposeAppointmentConflicts(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()

	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 0), 30)); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	// Частичное пересечение с 10:00-10:30 отклоняется
	_, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 15), 30))
	if !domain.IsKind(err, domain.ErrSlotConflict) {
		t.Errorf("expected slot_conflict, got %v", err)
	}

	// Стык интервалов конфликтом не считается
	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 30), 30)); err != nil {
		t.Errorf("back-to-back slot must be accepted: %v", err)
	}

	// Другой врач в то же время свободен
	if _, err := service.ProposeAppointment(ctx, proposeCommand(uuid.New(), futureAt(2, 10, 0), 30)); err != nil {
		t.Errorf("other doctor must be free: %v", err)
	}
}

func TestProposeAppointmentPolicyRejections(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()

	tests := []struct {
		name string
		cmd  in.ProposeAppointmentCommand
	}{
		{"before open", proposeCommand(doctorID, futureAt(2, 7, 30), 30)},
		{"after close", proposeCommand(doctorID, futureAt(2, 18, 30), 30)},
		{"duration below minimum", proposeCommand(doctorID, futureAt(2, 10, 0), 15)},
		{"outside booking window", proposeCommand(doctorID, futureAt(120, 10, 0), 30)},
		{"in the past", proposeCommand(doctorID, futureAt(-2, 10, 0), 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ProposeAppointment(ctx, tt.cmd)
			if !domain.IsKind(err, domain.ErrPolicyViolation) {
				t.Errorf("expected policy_violation, got %v", err)
			}
		})
	}

	t.Run("implant without lead time", func(t *testing.T) {
		cmd := proposeCommand(doctorID, futureAt(2, 10, 0), 180)
		cmd.Treatment = domain.TreatmentImplant

		_, err := service.ProposeAppointment(ctx, cmd)
		if !domain.IsKind(err, domain.ErrPolicyViolation) {
			t.Errorf("expected policy_violation for implant in two days, got %v", err)
		}

		cmd.Time = futureAt(10, 10, 0)
		if _, err := service.ProposeAppointment(ctx, cmd); err != nil {
			t.Errorf("implant with lead time must be accepted: %v", err)
		}
	})
}

func TestProposeAppointmentConcurrent(t *testing.T) {
	service := newTestService(t)
	doctorID := uuid.New()
	slot := futureAt(2, 10, 0)

	const workers = 100

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ProposeAppointment(context.Background(), proposeCommand(doctorID, slot, 30))
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !domain.IsKind(err, domain.ErrSlotConflict) && !domain.IsKind(err, domain.ErrBusy) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful booking, got %d", succeeded)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()

	appointment, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 0), 30))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	// Перенос на время, пересекающее собственный старый интервал, разрешен
	moved, err := service.RescheduleAppointment(ctx, appointment.ID, futureAt(2, 10, 15))
	if err != nil {
		t.Fatalf("reschedule over own slot failed: %v", err)
	}
	if !moved.Time.Equal(futureAt(2, 10, 15)) {
		t.Errorf("unexpected time after reschedule: %s", moved.Time)
	}

	// Перенос второй записи на занятое время отклоняется
	other, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 12, 0), 30))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	_, err = service.RescheduleAppointment(ctx, other.ID, futureAt(2, 10, 30))
	if !domain.IsKind(err, domain.ErrSlotConflict) {
		t.Errorf("expected slot_conflict, got %v", err)
	}

	// Перенос несуществующей записи
	_, err = service.RescheduleAppointment(ctx, uuid.New(), futureAt(2, 15, 0))
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestStatusTransitionsThroughService(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	appointment, err := service.ProposeAppointment(ctx, proposeCommand(uuid.New(), futureAt(2, 10, 0), 30))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	confirmed, err := service.ConfirmAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != domain.AppointmentStatusConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}

	completed, err := service.CompleteAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.AppointmentStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	// Завершенная запись не отменяется
	_, err = service.CancelAppointment(ctx, appointment.ID)
	if !domain.IsKind(err, domain.ErrInvalidStateTransition) {
		t.Errorf("expected invalid_state_transition, got %v", err)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()
	slot := futureAt(2, 10, 0)

	appointment, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, slot, 30))
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	if _, err := service.CancelAppointment(ctx, appointment.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Отмененная запись не занимает время врача
	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, slot, 30)); err != nil {
		t.Errorf("slot must be free after cancellation: %v", err)
	}
}

func TestIsSlotAvailable(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()

	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 0), 30)); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	available, err := service.IsSlotAvailable(ctx, doctorID, futureAt(2, 10, 0), domain.Duration{Minutes: 30})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if available {
		t.Error("expected occupied slot unavailable")
	}

	available, err = service.IsSlotAvailable(ctx, doctorID, futureAt(2, 11, 0), domain.Duration{Minutes: 30})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !available {
		t.Error("expected free slot available")
	}

	// Вне рабочих часов слот недоступен без обращения к хранилищу
	available, err = service.IsSlotAvailable(ctx, doctorID, futureAt(2, 6, 0), domain.Duration{Minutes: 30})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if available {
		t.Error("expected slot outside business hours unavailable")
	}
}

func TestListAppointments(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()
	patientID := uuid.New()

	// Две записи пациента в обратном порядке создания
	late := proposeCommand(doctorID, futureAt(3, 14, 0), 30)
	late.PatientID = patientID
	if _, err := service.ProposeAppointment(ctx, late); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	early := proposeCommand(doctorID, futureAt(2, 9, 0), 30)
	early.PatientID = patientID
	if _, err := service.ProposeAppointment(ctx, early); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 11, 0), 30)); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	byPatient, err := service.ListPatientAppointments(ctx, patientID)
	if err != nil {
		t.Fatalf("list by patient failed: %v", err)
	}
	if len(byPatient) != 2 {
		t.Fatalf("expected 2 patient appointments, got %d", len(byPatient))
	}
	if !byPatient[0].Time.Before(byPatient[1].Time) {
		t.Error("expected patient appointments ordered by time")
	}

	byDoctor, err := service.ListDoctorAppointments(ctx, doctorID)
	if err != nil {
		t.Fatalf("list by doctor failed: %v", err)
	}
	if len(byDoctor) != 3 {
		t.Errorf("expected 3 doctor appointments, got %d", len(byDoctor))
	}

	if _, err := service.ListPatientAppointments(ctx, uuid.Nil); !domain.IsKind(err, domain.ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for empty patient, got %v", err)
	}
	if _, err := service.ListDoctorAppointments(ctx, uuid.Nil); !domain.IsKind(err, domain.ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for empty doctor, got %v", err)
	}
}

func TestNoOverlapInvariant(t *testing.T) {
	service := newTestService(t)
	doctorID := uuid.New()

	// Конкурентные бронирования разных длительностей на пересекающиеся
	// времена: какие-то пройдут, какие-то нет, но среди успешных не должно
	// остаться ни одной пары пересекающихся активных записей.
	var wg sync.WaitGroup
	for h := 8; h < 18; h++ {
		for _, m := range []int{0, 15, 30, 45} {
			for _, d := range []int{30, 45, 60} {
				wg.Add(1)
				go func(hour, minute, duration int) {
					defer wg.Done()
					_, _ = service.ProposeAppointment(context.Background(), proposeCommand(doctorID, futureAt(2, hour, minute), duration))
				}(h, m, d)
			}
		}
	}
	wg.Wait()

	booked, err := service.ListDoctorAppointments(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(booked) == 0 {
		t.Fatal("expected at least one successful booking")
	}

	for i := range booked {
		for j := i + 1; j < len(booked); j++ {
			a, b := &booked[i], &booked[j]
			if a.Time.OverlapsWith(a.Duration, b.Time, b.Duration) {
				t.Errorf("overlapping bookings committed: %s+%dm and %s+%dm",
					a.Time, a.Duration.Minutes, b.Time, b.Duration.Minutes)
			}
		}
	}
}

func TestQueryAvailableSlots(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.New()
	day := futureAt(2, 0, 0).Date()

	if _, err := service.ProposeAppointment(ctx, proposeCommand(doctorID, futureAt(2, 10, 0), 30)); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	slots, err := service.QueryAvailableSlots(ctx, doctorID, day, domain.Duration{Minutes: 30})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	// 08:00-18:00 с шагом 30 минут дает 20 слотов, один занят
	if len(slots) != 19 {
		t.Errorf("expected 19 slots, got %d", len(slots))
	}

	for i, slot := range slots {
		if slot.MinutesOfDay() == 10*60 {
			t.Error("occupied slot leaked into availability")
		}
		if i > 0 && !slots[i-1].Before(slot) {
			t.Errorf("slots out of order: %s then %s", slots[i-1], slot)
		}
	}

	// Для длинного приема занятыми становятся и соседние кандидаты
	slots, err = service.QueryAvailableSlots(ctx, doctorID, day, domain.Duration{Minutes: 60})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	for _, slot := range slots {
		if slot.MinutesOfDay() == 9*60+30 {
			t.Error("hour-long slot at 09:30 overlaps 10:00 appointment")
		}
	}

	if _, err := service.QueryAvailableSlots(ctx, uuid.Nil, day, domain.Duration{Minutes: 30}); !domain.IsKind(err, domain.ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for empty doctor, got %v", err)
	}
	if _, err := service.QueryAvailableSlots(ctx, doctorID, day, domain.Duration{}); !domain.IsKind(err, domain.ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for zero duration, got %v", err)
	}
}
