package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/dental-clinic-scheduler/internal/config"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/ports/out"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

// CalendarCacheAdapter — LRU-кэш календарей доступности по ключу
// (врач, день). Наружу отдаются и принимаются копии, чтобы чтение
// календаря не гонялось с точечными обновлениями.
type CalendarCacheAdapter struct {
	cache  *lru.Cache[string, *domain.AvailabilityCalendar]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCalendarCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CalendarCacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	lruCache, err := lru.New[string, *domain.AvailabilityCalendar](cfg.Cache.CalendarsSize)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.CalendarsSize,
		})
		return nil, err
	}

	return &CalendarCacheAdapter{
		cache:  lruCache,
		logger: logger.WithModule("CalendarCacheAdapter"),
	}, nil
}

func calendarKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("doctor:%s:%s", doctorID, utils.DayKey(date))
}

func (c *CalendarCacheAdapter) GetCalendar(ctx context.Context, doctorID uuid.UUID, date time.Time) (*domain.AvailabilityCalendar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	calendar, exists := c.cache.Get(calendarKey(doctorID, date))
	if !exists {
		c.logger.Debug("cache.calendar.get.miss", out.LogFields{
			"doctorId": doctorID,
			"date":     utils.DayKey(date),
		})
		return nil, false
	}

	c.logger.Debug("cache.calendar.get.hit", out.LogFields{
		"doctorId": doctorID,
		"date":     utils.DayKey(date),
	})

	return calendar.Clone(), true
}

func (c *CalendarCacheAdapter) StoreCalendar(ctx context.Context, calendar *domain.AvailabilityCalendar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.calendar.store", out.LogFields{
		"doctorId":   calendar.DoctorID,
		"date":       utils.DayKey(calendar.Date),
		"slotsCount": calendar.SlotCount(),
	})

	c.cache.Add(calendarKey(calendar.DoctorID, calendar.Date), calendar.Clone())
}

func (c *CalendarCacheAdapter) MarkIntervalOccupied(ctx context.Context, doctorID uuid.UUID, t domain.AppointmentTime, d domain.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := calendarKey(doctorID, t.Date())
	calendar, exists := c.cache.Get(key)
	if !exists {
		return
	}

	calendar.MarkIntervalOccupied(t, d)
	c.cache.Add(key, calendar)
}

func (c *CalendarCacheAdapter) InvalidateCalendar(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(calendarKey(doctorID, date))
}

func (c *CalendarCacheAdapter) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}
