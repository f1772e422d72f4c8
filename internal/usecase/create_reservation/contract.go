package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
)

// SlotRepository интерфейс репозитория мест
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error)
	BumpVersion(ctx context.Context, id int64, expected int64) (int64, error)
}

// AreaRepository интерфейс репозитория парковок
type AreaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error)
}

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	Confirm(ctx context.Context, id int64, now time.Time) error
	ListOpenBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error)
	ListOpenByVehicleNumber(ctx context.Context, vehicleNumber string) ([]domain.Reservation, error)
}

// PolicyRepository интерфейс репозитория политик парковок
type PolicyRepository interface {
	Resolve(ctx context.Context, areaID int64, base domain.Policy) (domain.Policy, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetCustomerWithGracefulDegradation(ctx context.Context, customerID int64) (*userservice.Customer, error)
}

// Notifier интерфейс отправки SMS
type Notifier interface {
	Send(ctx context.Context, notice notificationservice.Notice) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики переходов брони
type Metrics interface {
	ObserveTransition(transition, result string)
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
