package find_nearest_spots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// AreaRepository геоиндекс парковок
type AreaRepository interface {
	FindActiveInBox(ctx context.Context, box geo.Box, now time.Time) ([]domain.ParkingArea, error)
}

// SlotRepository интерфейс репозитория мест
type SlotRepository interface {
	ListForAreas(ctx context.Context, areaIDs []int64, vehicleType domain.VehicleType) ([]domain.ParkingSlot, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	ListOpenBySlots(ctx context.Context, slotIDs []int64) ([]domain.Reservation, error)
}

// PolicyRepository интерфейс репозитория политик парковок
type PolicyRepository interface {
	ListByAreas(ctx context.Context, areaIDs []int64) (map[int64]*domain.AreaPolicyOverride, error)
}

// AreaCache кеш кандидатов геопоиска
type AreaCache interface {
	Key(ctx context.Context, origin geo.Point, radiusMeters int) (string, error)
	Get(ctx context.Context, key string) ([]domain.ParkingArea, bool, error)
	Set(ctx context.Context, key string, areas []domain.ParkingArea) error
}

// Metrics метрики поиска
type Metrics interface {
	ObserveSearch(areasReturned int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
