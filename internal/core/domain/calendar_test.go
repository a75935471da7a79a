package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testCalendar(t *testing.T) *AvailabilityCalendar {
	t.Helper()

	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	calendar, err := NewAvailabilityCalendar(uuid.New(), date, 8*60, 18*60, minutes(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return calendar
}

func TestNewAvailabilityCalendarValidation(t *testing.T) {
	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	if _, err := NewAvailabilityCalendar(uuid.Nil, date, 480, 1080, minutes(30)); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for empty doctor, got %v", err)
	}
	if _, err := NewAvailabilityCalendar(uuid.New(), time.Time{}, 480, 1080, minutes(30)); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for zero date, got %v", err)
	}
	if _, err := NewAvailabilityCalendar(uuid.New(), date, 480, 1080, minutes(0)); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for zero granularity, got %v", err)
	}
	if _, err := NewAvailabilityCalendar(uuid.New(), date, 1080, 480, minutes(30)); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected invalid_argument for close before open, got %v", err)
	}
}

func TestCalendarGrid(t *testing.T) {
	calendar := testCalendar(t)

	// 08:00-18:00 с шагом 30 минут: последний слот начинается в 17:30
	if calendar.SlotCount() != 20 {
		t.Errorf("expected 20 slots, got %d", calendar.SlotCount())
	}

	if !calendar.IsAvailableAt(at(8, 0)) {
		t.Error("expected first slot available")
	}
	if !calendar.IsAvailableAt(at(17, 30)) {
		t.Error("expected last slot available")
	}
	if calendar.IsAvailableAt(at(18, 0)) {
		t.Error("slot starting at close must not be on the grid")
	}
	if calendar.IsAvailableAt(at(7, 30)) {
		t.Error("slot before open must not be on the grid")
	}
	if calendar.IsAvailableAt(at(10, 15)) {
		t.Error("off-grid time must not be available")
	}
}

func TestCalendarSlotErrors(t *testing.T) {
	calendar := testCalendar(t)

	if err := calendar.MarkSlotOccupied(at(10, 15)); !IsKind(err, ErrNotFound) {
		t.Errorf("expected not_found for off-grid time, got %v", err)
	}

	otherDay := AppointmentTime{Value: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)}
	if err := calendar.MarkSlotOccupied(otherDay); !IsKind(err, ErrNotFound) {
		t.Errorf("expected not_found for date mismatch, got %v", err)
	}
}

func TestCalendarSlotStatuses(t *testing.T) {
	calendar := testCalendar(t)

	if err := calendar.MarkSlotOccupied(at(10, 0)); err != nil {
		t.Fatalf("mark occupied failed: %v", err)
	}
	if calendar.IsAvailableAt(at(10, 0)) {
		t.Error("occupied slot must not be available")
	}

	if err := calendar.MarkSlotAvailable(at(10, 0)); err != nil {
		t.Fatalf("mark available failed: %v", err)
	}
	if !calendar.IsAvailableAt(at(10, 0)) {
		t.Error("expected slot available again")
	}

	if err := calendar.BlockSlot(at(10, 0)); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if calendar.IsAvailableAt(at(10, 0)) {
		t.Error("blocked slot must not be available")
	}
}

func TestMarkIntervalOccupied(t *testing.T) {
	calendar := testCalendar(t)

	// Интервал 10:15-11:00 пересекает слоты 10:00 и 10:30
	calendar.MarkIntervalOccupied(at(10, 15), minutes(45))

	if calendar.IsAvailableAt(at(10, 0)) {
		t.Error("expected 10:00 occupied")
	}
	if calendar.IsAvailableAt(at(10, 30)) {
		t.Error("expected 10:30 occupied")
	}
	if !calendar.IsAvailableAt(at(9, 30)) {
		t.Error("expected 09:30 untouched")
	}
	if !calendar.IsAvailableAt(at(11, 0)) {
		t.Error("expected 11:00 untouched")
	}
}

func TestAvailableSlotsOrdering(t *testing.T) {
	calendar := testCalendar(t)

	if err := calendar.MarkSlotOccupied(at(8, 30)); err != nil {
		t.Fatalf("mark occupied failed: %v", err)
	}

	var previous AppointmentTime
	count := 0
	for slot := range calendar.AvailableSlots() {
		if count > 0 && !previous.Before(slot) {
			t.Errorf("slots out of order: %s then %s", previous, slot)
		}
		if slot.MinutesOfDay() == 8*60+30 {
			t.Error("occupied slot leaked into available sequence")
		}
		previous = slot
		count++
	}

	if count != 19 {
		t.Errorf("expected 19 available slots, got %d", count)
	}

	// Последовательность перезапускаемая
	first := -1
	for slot := range calendar.AvailableSlots() {
		first = slot.MinutesOfDay()
		break
	}
	if first != 8*60 {
		t.Errorf("expected restart from 08:00, got %d minutes", first)
	}
}

func TestCalendarClone(t *testing.T) {
	calendar := testCalendar(t)
	clone := calendar.Clone()

	if err := clone.MarkSlotOccupied(at(9, 0)); err != nil {
		t.Fatalf("mark occupied failed: %v", err)
	}

	if !calendar.IsAvailableAt(at(9, 0)) {
		t.Error("clone mutation leaked into original")
	}
}
