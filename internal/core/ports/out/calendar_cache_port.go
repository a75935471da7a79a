package out

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
)

// CalendarCachePort — кэш календарей доступности по (врач, день).
// Кэш вторичен: источником истины остается проверка пересечений по
// реальным записям, при расхождении календарь сбрасывается целиком.
type CalendarCachePort interface {
	GetCalendar(ctx context.Context, doctorID uuid.UUID, date time.Time) (*domain.AvailabilityCalendar, bool)
	StoreCalendar(ctx context.Context, calendar *domain.AvailabilityCalendar)

	// MarkIntervalOccupied помечает занятыми слоты, пересекающие интервал
	// новой записи. No-op, если календаря нет в кэше.
	MarkIntervalOccupied(ctx context.Context, doctorID uuid.UUID, t domain.AppointmentTime, d domain.Duration)

	InvalidateCalendar(ctx context.Context, doctorID uuid.UUID, date time.Time)
	InvalidateAll(ctx context.Context)
}
