package domain

import (
	"testing"
	"time"
)

func TestIsValidAppointmentTime(t *testing.T) {
	policy := DefaultSchedulingPolicy()

	tests := []struct {
		name     string
		time     AppointmentTime
		expected bool
	}{
		{"before open", at(7, 59), false},
		{"at open", at(8, 0), true},
		{"midday", at(12, 30), true},
		{"just before close", at(17, 59), true},
		{"at close inclusive", at(18, 0), true},
		{"after close", at(18, 1), false},
		{"midnight", at(0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.IsValidAppointmentTime(tt.time); got != tt.expected {
				t.Errorf("IsValidAppointmentTime(%s) = %v, expected %v", tt.time, got, tt.expected)
			}
		})
	}

	t.Run("close exclusive", func(t *testing.T) {
		policy := DefaultSchedulingPolicy()
		policy.CloseInclusive = false

		if policy.IsValidAppointmentTime(at(18, 0)) {
			t.Error("expected close time rejected when exclusive")
		}
		if !policy.IsValidAppointmentTime(at(17, 59)) {
			t.Error("expected 17:59 accepted")
		}
	})
}

func TestMinimumDurationFor(t *testing.T) {
	policy := DefaultSchedulingPolicy()

	tests := []struct {
		treatment TreatmentType
		minutes   int
	}{
		{TreatmentConsultation, 30},
		{TreatmentCleaning, 60},
		{TreatmentFilling, 45},
		{TreatmentExtraction, 30},
		{TreatmentRootCanal, 90},
		{TreatmentCrown, 120},
		{TreatmentBridge, 150},
		{TreatmentImplant, 180},
		{TreatmentOrthodontics, 60},
		{TreatmentPeriodontal, 75},
	}

	for _, tt := range tests {
		t.Run(string(tt.treatment), func(t *testing.T) {
			d, err := policy.MinimumDurationFor(tt.treatment)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Minutes != tt.minutes {
				t.Errorf("expected %d minutes, got %d", tt.minutes, d.Minutes)
			}
		})
	}

	if _, err := policy.MinimumDurationFor(TreatmentType("surgery")); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for unknown treatment, got %v", err)
	}
}

func TestAdvanceBookingRules(t *testing.T) {
	policy := DefaultSchedulingPolicy()

	advance := []TreatmentType{TreatmentCrown, TreatmentBridge, TreatmentImplant, TreatmentOrthodontics}
	for _, treatment := range advance {
		if !policy.RequiresAdvanceBooking(treatment) {
			t.Errorf("expected %s to require advance booking", treatment)
		}
	}

	emergency := []TreatmentType{TreatmentConsultation, TreatmentExtraction, TreatmentRootCanal}
	for _, treatment := range emergency {
		if !policy.AllowsEmergencyAppointment(treatment) {
			t.Errorf("expected %s to allow emergency appointment", treatment)
		}
		if policy.RequiresAdvanceBooking(treatment) {
			t.Errorf("expected %s not to require advance booking", treatment)
		}
	}

	if policy.MinimumLeadDaysFor(TreatmentImplant) != 7 {
		t.Errorf("expected 7 lead days for implant, got %d", policy.MinimumLeadDaysFor(TreatmentImplant))
	}
	if policy.MinimumLeadDaysFor(TreatmentCrown) != 3 {
		t.Errorf("expected 3 lead days for crown, got %d", policy.MinimumLeadDaysFor(TreatmentCrown))
	}
}

func TestHasSufficientLeadTime(t *testing.T) {
	policy := DefaultSchedulingPolicy()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tomorrow := AppointmentTime{Value: now.AddDate(0, 0, 1)}
	inAWeek := AppointmentTime{Value: now.AddDate(0, 0, 7)}

	if policy.HasSufficientLeadTime(now, tomorrow, TreatmentImplant) {
		t.Error("expected implant tomorrow rejected")
	}
	if !policy.HasSufficientLeadTime(now, inAWeek, TreatmentImplant) {
		t.Error("expected implant in a week accepted")
	}
	if !policy.HasSufficientLeadTime(now, tomorrow, TreatmentConsultation) {
		t.Error("expected consultation tomorrow accepted")
	}
	if !policy.HasSufficientLeadTime(now, AppointmentTime{Value: now.Add(time.Hour)}, TreatmentExtraction) {
		t.Error("expected emergency extraction in an hour accepted")
	}
}

func TestWithinBookingWindow(t *testing.T) {
	policy := DefaultSchedulingPolicy()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	if !policy.WithinBookingWindow(now, AppointmentTime{Value: now.AddDate(0, 0, 90)}) {
		t.Error("expected 90 days ahead within window")
	}
	if policy.WithinBookingWindow(now, AppointmentTime{Value: now.AddDate(0, 0, 91)}) {
		t.Error("expected 91 days ahead outside window")
	}
}

func TestIsLateCancellation(t *testing.T) {
	policy := DefaultSchedulingPolicy()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	if !policy.IsLateCancellation(now, AppointmentTime{Value: now.Add(2 * time.Hour)}) {
		t.Error("expected cancellation 2 hours before to be late")
	}
	if policy.IsLateCancellation(now, AppointmentTime{Value: now.Add(48 * time.Hour)}) {
		t.Error("expected cancellation 48 hours before not to be late")
	}
}
