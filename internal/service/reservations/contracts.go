package reservations

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListOpenBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error)
	ListByCustomer(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]domain.Reservation, error)
	ListByArea(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	Confirm(ctx context.Context, id int64, now time.Time) error
	MarkParked(ctx context.Context, id int64, now time.Time) error
	Complete(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, now time.Time) error
	Cancel(ctx context.Context, id int64, reason *string, now time.Time) error
	MoveSlot(ctx context.Context, id int64, slotID int64, now time.Time) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, now time.Time) error
	CreatePayment(ctx context.Context, payment *domain.ReservationPayment) (*domain.ReservationPayment, error)
	ListPayments(ctx context.Context, reservationID int64) ([]domain.ReservationPayment, error)
}

// SlotRepository интерфейс репозитория мест
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error)
	BumpVersion(ctx context.Context, id int64, expected int64) (int64, error)
}

// AreaRepository интерфейс репозитория парковок
type AreaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error)
}

// PolicyRepository интерфейс репозитория политик парковок
type PolicyRepository interface {
	Resolve(ctx context.Context, areaID int64, base domain.Policy) (domain.Policy, error)
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
