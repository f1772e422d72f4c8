package find_nearest_spots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

type fixture struct {
	areas        *mockAreaRepo
	slots        *mockSlotRepo
	reservations *mockReservationRepo
	policies     *mockPolicyRepo
	cache        *mockCache
	counter      *searchCounter
	uc           *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		areas:        &mockAreaRepo{},
		slots:        &mockSlotRepo{},
		reservations: &mockReservationRepo{},
		policies:     &mockPolicyRepo{},
		cache:        &mockCache{},
		counter:      &searchCounter{},
	}
	f.uc = NewUseCase(f.areas, f.slots, f.reservations, f.policies, f.cache, f.counter, Options{
		Policy:              domain.DefaultPolicy(),
		DefaultRadiusMeters: 10000,
		SampleSize:          5,
	}, nopLogger{})
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func currentArea(id int64, lat, lng float64) domain.ParkingArea {
	return domain.ParkingArea{
		ID:        id,
		Latitude:  lat,
		Longitude: lng,
		IsActive:  true,
		Subscription: &domain.Subscription{
			ID:                  id,
			PaymentStatus:       domain.SubscriptionPaid,
			SubscriptionEndDate: now.Add(24 * time.Hour),
		},
	}
}

func TestExecute_RanksByDistanceAndFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	far := currentArea(1, 0.05, 0)
	near := currentArea(2, 0.01, 0)
	outside := currentArea(3, 0.5, 0)
	lapsed := currentArea(4, 0.001, 0)
	lapsed.Subscription.SubscriptionEndDate = now.Add(-time.Hour)

	f.cache.On("Key", ctx, geo.Point{Lat: 0, Lng: 0}, 10000).Return("key", nil)
	f.cache.On("Get", ctx, "key").Return(nil, false, nil)
	f.areas.On("FindActiveInBox", ctx, mock.AnythingOfType("geo.Box"), now).
		Return([]domain.ParkingArea{far, near, outside, lapsed}, nil)
	f.cache.On("Set", ctx, "key", mock.Anything).Return(nil)

	f.slots.On("ListForAreas", ctx, []int64{2, 1}, domain.VehicleCar).Return([]domain.ParkingSlot{
		slot(10, 1, 40),
		slot(20, 2, 60),
		slot(21, 2, 60),
	}, nil)
	f.reservations.On("ListOpenBySlots", ctx, []int64{10, 20, 21}).Return([]domain.Reservation{
		{ID: 100, SlotID: 20, Status: domain.ReservationConfirmed, IsParked: true, StartDateAndTime: now.Add(-2 * time.Hour)},
	}, nil)
	f.policies.On("ListByAreas", ctx, []int64{2, 1}).Return(map[int64]*domain.AreaPolicyOverride{}, nil)

	resp, err := f.uc.Execute(ctx, &Request{
		Origin:      geo.Point{Lat: 0, Lng: 0},
		VehicleType: "car",
		StartTime:   now,
		EndTime:     ptr.Ptr(now.Add(2 * time.Hour)),
	})

	require.NoError(t, err)
	require.Len(t, resp.Areas, 2)
	assert.Equal(t, int64(2), resp.Areas[0].Area.ID)
	assert.Equal(t, 1, resp.Areas[0].FreeSlotCount)
	assert.Equal(t, []int64{21}, resp.Areas[0].SampleSlotIDs)
	assert.Equal(t, int64(1), resp.Areas[1].Area.ID)
	assert.Less(t, resp.Areas[0].DistanceMeters, resp.Areas[1].DistanceMeters)
	assert.Equal(t, 2, f.counter.last)

	f.areas.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestExecute_CacheHitSkipsGeoIndex(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("Key", ctx, mock.Anything, 500).Return("key", nil)
	f.cache.On("Get", ctx, "key").Return([]domain.ParkingArea{currentArea(1, 0.001, 0)}, true, nil)
	f.slots.On("ListForAreas", ctx, []int64{1}, domain.VehicleBike).Return([]domain.ParkingSlot{}, nil)
	f.reservations.On("ListOpenBySlots", ctx, []int64{}).Return([]domain.Reservation{}, nil)
	f.policies.On("ListByAreas", ctx, []int64{1}).Return(nil, nil)

	resp, err := f.uc.Execute(ctx, &Request{
		Origin:       geo.Point{Lat: 0, Lng: 0},
		RadiusMeters: ptr.Ptr(500),
		VehicleType:  "bike",
		StartTime:    now,
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Areas)
	f.areas.AssertNotCalled(t, "FindActiveInBox", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_CacheFailureFallsBackToIndex(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("Key", ctx, mock.Anything, 10000).Return("", errors.New("redis down"))
	f.areas.On("FindActiveInBox", ctx, mock.Anything, now).Return([]domain.ParkingArea{}, nil)

	resp, err := f.uc.Execute(ctx, &Request{Origin: geo.Point{Lat: 10, Lng: 10}, VehicleType: "car", StartTime: now})

	require.NoError(t, err)
	assert.Empty(t, resp.Areas)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_GeoIndexFailureIsUpstream(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.cache.On("Key", ctx, mock.Anything, 10000).Return("key", nil)
	f.cache.On("Get", ctx, "key").Return(nil, false, nil)
	f.areas.On("FindActiveInBox", ctx, mock.Anything, now).Return(nil, errors.New("db down"))

	_, err := f.uc.Execute(ctx, &Request{Origin: geo.Point{Lat: 10, Lng: 10}, VehicleType: "car", StartTime: now})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestExecute_SkipsAreasWithBrokenCoordinates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	broken := currentArea(1, 200, 0)

	f.cache.On("Key", ctx, mock.Anything, 10000).Return("", nil)
	f.areas.On("FindActiveInBox", ctx, mock.Anything, now).Return([]domain.ParkingArea{broken}, nil)

	resp, err := f.uc.Execute(ctx, &Request{Origin: geo.Point{Lat: 0, Lng: 0}, VehicleType: "car", StartTime: now})

	require.NoError(t, err)
	assert.Empty(t, resp.Areas)
	assert.Equal(t, 0, f.counter.last)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{name: "bad latitude", req: Request{Origin: geo.Point{Lat: 100}, VehicleType: "car", StartTime: now}},
		{name: "unknown vehicle", req: Request{VehicleType: "boat", StartTime: now}},
		{name: "missing start", req: Request{VehicleType: "car"}},
		{name: "end before start", req: Request{VehicleType: "car", StartTime: now, EndTime: ptr.Ptr(now.Add(-time.Hour))}},
		{name: "radius too large", req: Request{VehicleType: "car", StartTime: now, RadiusMeters: ptr.Ptr(1000000)}},
		{name: "zero radius", req: Request{VehicleType: "car", StartTime: now, RadiusMeters: ptr.Ptr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := tt.req
			_, err := f.uc.Execute(context.Background(), &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
