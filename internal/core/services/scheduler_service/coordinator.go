package scheduler_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
	"github.com/suchimauz/dental-clinic-scheduler/internal/utils"
)

// BookingCoordinator — критическая секция по строковому ключу.
// Для бронирования ключ — (врач, день), для переходов статусов — запись.
// Гарантирует, что из двух конкурентных бронирований пересекающихся
// интервалов успешным будет максимум одно: проверка доступности и
// коммит выполняются только под захваченным ключом.
type BookingCoordinator struct {
	mu             sync.Mutex
	locks          map[string]chan struct{}
	acquireTimeout time.Duration
}

func NewBookingCoordinator(acquireTimeout time.Duration) *BookingCoordinator {
	return &BookingCoordinator{
		locks:          make(map[string]chan struct{}),
		acquireTimeout: acquireTimeout,
	}
}

// Acquire захватывает ключ с ограниченным ожиданием. При успехе возвращает
// функцию освобождения, которую нужно вызвать на всех путях выхода.
// При невозможности захватить ключ за отведенное время возвращает
// повторяемую ошибку busy.
func (c *BookingCoordinator) Acquire(ctx context.Context, key string) (func(), error) {
	c.mu.Lock()
	lock, exists := c.locks[key]
	if !exists {
		// Буфер 1: токен в канале означает захваченный ключ.
		lock = make(chan struct{}, 1)
		c.locks[key] = lock
	}
	c.mu.Unlock()

	timer := time.NewTimer(c.acquireTimeout)
	defer timer.Stop()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-timer.C:
		return nil, domain.NewError(domain.ErrBusy, "coordinator.acquire.timeout").
			WithField("key", key).
			WithField("timeout", c.acquireTimeout.String())
	case <-ctx.Done():
		return nil, domain.NewError(domain.ErrBusy, "coordinator.acquire.cancelled").
			WithField("key", key).
			Wrap(ctx.Err())
	}
}

func doctorDateKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("doctor:%s:%s", doctorID, utils.DayKey(date))
}

func appointmentKey(appointmentID uuid.UUID) string {
	return fmt.Sprintf("appointment:%s", appointmentID)
}
