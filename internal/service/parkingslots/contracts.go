package parkingslots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// SlotRepository интерфейс репозитория мест
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error)
	ListByArea(ctx context.Context, areaID int64) ([]domain.ParkingSlot, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
	UpdatePrice(ctx context.Context, id int64, price float64, now time.Time) error
	UpdateAreaPriceByVehicleType(ctx context.Context, areaID int64, vehicleType domain.VehicleType, price float64, now time.Time) (int64, error)
	BumpVersion(ctx context.Context, id int64, expected int64) (int64, error)
}

// AreaRepository интерфейс репозитория парковок
type AreaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	ListOpenBySlots(ctx context.Context, slotIDs []int64) ([]domain.Reservation, error)
}

// PolicyRepository интерфейс репозитория политик парковок
type PolicyRepository interface {
	Resolve(ctx context.Context, areaID int64, base domain.Policy) (domain.Policy, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
