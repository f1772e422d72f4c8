package find_nearest_spots

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

type mockAreaRepo struct{ mock.Mock }

func (m *mockAreaRepo) FindActiveInBox(ctx context.Context, box geo.Box, now time.Time) ([]domain.ParkingArea, error) {
	args := m.Called(ctx, box, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParkingArea), args.Error(1)
}

type mockSlotRepo struct{ mock.Mock }

func (m *mockSlotRepo) ListForAreas(ctx context.Context, areaIDs []int64, vehicleType domain.VehicleType) ([]domain.ParkingSlot, error) {
	args := m.Called(ctx, areaIDs, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ParkingSlot), args.Error(1)
}

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) ListOpenBySlots(ctx context.Context, slotIDs []int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, slotIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type mockPolicyRepo struct{ mock.Mock }

func (m *mockPolicyRepo) ListByAreas(ctx context.Context, areaIDs []int64) (map[int64]*domain.AreaPolicyOverride, error) {
	args := m.Called(ctx, areaIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.AreaPolicyOverride), args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Key(ctx context.Context, origin geo.Point, radiusMeters int) (string, error) {
	args := m.Called(ctx, origin, radiusMeters)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Get(ctx context.Context, key string) ([]domain.ParkingArea, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.ParkingArea), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, areas []domain.ParkingArea) error {
	return m.Called(ctx, key, areas).Error(0)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type searchCounter struct{ last int }

func (s *searchCounter) ObserveSearch(n int) { s.last = n }
