package create_reservation

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
)

type mockSlotRepo struct{ mock.Mock }

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSlot), args.Error(1)
}

func (m *mockSlotRepo) BumpVersion(ctx context.Context, id int64, expected int64) (int64, error) {
	args := m.Called(ctx, id, expected)
	return args.Get(0).(int64), args.Error(1)
}

type mockAreaRepo struct{ mock.Mock }

func (m *mockAreaRepo) GetByID(ctx context.Context, id int64) (*domain.ParkingArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingArea), args.Error(1)
}

type mockReservationRepo struct{ mock.Mock }

// Create возвращает переданную бронь; ID проставляет Run в тесте
func (m *mockReservationRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if err := m.Called(ctx, res).Error(0); err != nil {
		return nil, err
	}
	return res, nil
}

func (m *mockReservationRepo) Confirm(ctx context.Context, id int64, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockReservationRepo) ListOpenBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListOpenByVehicleNumber(ctx context.Context, vehicleNumber string) ([]domain.Reservation, error) {
	args := m.Called(ctx, vehicleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type stubPolicyRepo struct{ policy *domain.Policy }

func (s stubPolicyRepo) Resolve(_ context.Context, _ int64, base domain.Policy) (domain.Policy, error) {
	if s.policy != nil {
		return *s.policy, nil
	}
	return base, nil
}

type mockUserClient struct{ mock.Mock }

func (m *mockUserClient) GetCustomerWithGracefulDegradation(ctx context.Context, customerID int64) (*userservice.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userservice.Customer), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, notice notificationservice.Notice) error {
	return m.Called(ctx, notice).Error(0)
}

// inlineTx выполняет функцию без транзакции
type inlineTx struct{ calls int }

func (t *inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type transitionRecorder struct{ results []string }

func (r *transitionRecorder) ObserveTransition(transition, result string) {
	r.results = append(r.results, transition+":"+result)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
