package parkingareas

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// AreaRepository интерфейс репозитория парковок
type AreaRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error)
	HasCurrentSubscription(ctx context.Context, id int64, now time.Time) (bool, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
}

// PolicyRepository интерфейс репозитория политик парковок
type PolicyRepository interface {
	GetByArea(ctx context.Context, areaID int64) (*domain.AreaPolicyOverride, error)
	Upsert(ctx context.Context, override *domain.AreaPolicyOverride, now time.Time) (*domain.AreaPolicyOverride, error)
	Delete(ctx context.Context, areaID int64) error
}

// AreaCache кеш кандидатов геопоиска
type AreaCache interface {
	Invalidate(ctx context.Context) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
