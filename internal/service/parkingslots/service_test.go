package parkingslots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	"github.com/m04kA/SMC-ParkingService/internal/service/parkingslots/models"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

const (
	ownerID int64 = 500
	areaID  int64 = 3
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type mockSlotRepo struct{ mock.Mock }

func (m *mockSlotRepo) GetByID(ctx context.Context, id int64) (*domain.ParkingSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParkingSlot), args.Error(1)
}

func (m *mockSlotRepo) ListByArea(ctx context.Context, areaID int64) ([]domain.ParkingSlot, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).([]domain.ParkingSlot), args.Error(1)
}

func (m *mockSlotRepo) SetActive(ctx context.Context, id int64, active bool, now time.Time) error {
	return m.Called(ctx, id, active, now).Error(0)
}

func (m *mockSlotRepo) UpdatePrice(ctx context.Context, id int64, price float64, now time.Time) error {
	return m.Called(ctx, id, price, now).Error(0)
}

func (m *mockSlotRepo) UpdateAreaPriceByVehicleType(ctx context.Context, areaID int64, vehicleType domain.VehicleType, price float64, now time.Time) (int64, error) {
	args := m.Called(ctx, areaID, vehicleType, price, now)
	return args.Get(0).(int64), args.Error(1)
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

type stubReservations struct{ list []domain.Reservation }

func (s stubReservations) ListOpenBySlots(context.Context, []int64) ([]domain.Reservation, error) {
	return s.list, nil
}

type basePolicy struct{}

func (basePolicy) Resolve(_ context.Context, _ int64, base domain.Policy) (domain.Policy, error) {
	return base, nil
}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (inlineTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newService(slots *mockSlotRepo, areas *mockAreaRepo, reservations []domain.Reservation) *Service {
	svc := NewService(slots, areas, stubReservations{list: reservations}, basePolicy{}, inlineTx{}, domain.DefaultPolicy(), nopLogger{})
	svc.timeProvider = fixedTime{now: now}
	return svc
}

func activeArea() *domain.ParkingArea {
	return &domain.ParkingArea{
		ID:       areaID,
		OwnerID:  ownerID,
		IsActive: true,
		Subscription: &domain.Subscription{
			PaymentStatus:       domain.SubscriptionPaid,
			SubscriptionEndDate: now.Add(24 * time.Hour),
		},
	}
}

func TestUpdateSlot_DeactivateBumpsVersion(t *testing.T) {
	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	slots.On("GetByID", mock.Anything, int64(7)).Return(&domain.ParkingSlot{ID: 7, ParkingAreaID: areaID, IsActive: true, Version: 2, PricePerHour: 50}, nil)
	areas.On("GetByID", mock.Anything, areaID).Return(activeArea(), nil)
	slots.On("SetActive", mock.Anything, int64(7), false, now).Return(nil)
	slots.On("BumpVersion", mock.Anything, int64(7), int64(2)).Return(int64(3), nil)
	slots.On("UpdatePrice", mock.Anything, int64(7), 80.0, now).Return(nil)

	resp, err := newService(slots, areas, nil).UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{
		UserID:       ownerID,
		IsActive:     ptr.Ptr(false),
		PricePerHour: ptr.Ptr(80.0),
	})

	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, int64(3), resp.Version)
	assert.Equal(t, 80.0, resp.PricePerHour)
	slots.AssertExpectations(t)
}

func TestUpdateSlot_ConcurrentChange(t *testing.T) {
	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	slots.On("GetByID", mock.Anything, int64(7)).Return(&domain.ParkingSlot{ID: 7, ParkingAreaID: areaID, IsActive: true, Version: 2}, nil)
	areas.On("GetByID", mock.Anything, areaID).Return(activeArea(), nil)
	slots.On("SetActive", mock.Anything, int64(7), false, now).Return(nil)
	slots.On("BumpVersion", mock.Anything, int64(7), int64(2)).Return(int64(0), slotRepo.ErrVersionConflict)

	_, err := newService(slots, areas, nil).UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{
		UserID:   ownerID,
		IsActive: ptr.Ptr(false),
	})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateSlot_SerializationFailureExhausted(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	for i := 0; i < 2; i++ {
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()
	}

	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	slots.On("GetByID", mock.Anything, int64(7)).Return(&domain.ParkingSlot{ID: 7, ParkingAreaID: areaID, IsActive: true, Version: 2}, nil)
	areas.On("GetByID", mock.Anything, areaID).Return(activeArea(), nil)
	slots.On("SetActive", mock.Anything, int64(7), false, now).
		Return(fmt.Errorf("%w: SetActive - execute update: %w", slotRepo.ErrExecQuery, &pq.Error{Code: "40001"}))

	txMgr := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil)).WithSerializableAttempts(2)
	svc := NewService(slots, areas, stubReservations{}, basePolicy{}, txMgr, domain.DefaultPolicy(), nopLogger{})
	svc.timeProvider = fixedTime{now: now}

	_, err = svc.UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{
		UserID:   ownerID,
		IsActive: ptr.Ptr(false),
	})

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	slots.AssertNumberOfCalls(t, "SetActive", 2)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestUpdateSlot_CannotActivateInInactiveArea(t *testing.T) {
	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	area := activeArea()
	area.IsActive = false
	slots.On("GetByID", mock.Anything, int64(7)).Return(&domain.ParkingSlot{ID: 7, ParkingAreaID: areaID, Version: 2}, nil)
	areas.On("GetByID", mock.Anything, areaID).Return(area, nil)

	_, err := newService(slots, areas, nil).UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{
		UserID:   ownerID,
		IsActive: ptr.Ptr(true),
	})

	assert.ErrorIs(t, err, ErrAreaInactive)
}

func TestUpdateSlot_Validation(t *testing.T) {
	svc := newService(&mockSlotRepo{}, &mockAreaRepo{}, nil)

	_, err := svc.UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateSlot(context.Background(), 7, &models.UpdateSlotRequest{UserID: ownerID, PricePerHour: ptr.Ptr(-5.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateAreaPrices(t *testing.T) {
	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	areas.On("GetByID", mock.Anything, areaID).Return(activeArea(), nil)
	slots.On("UpdateAreaPriceByVehicleType", mock.Anything, areaID, domain.VehicleBike, 20.0, now).Return(int64(6), nil)
	svc := newService(slots, areas, nil)

	resp, err := svc.UpdateAreaPrices(context.Background(), areaID, &models.UpdateAreaPricesRequest{
		UserID: ownerID, VehicleType: "bike", PricePerHour: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.UpdatedSlots)

	_, err = svc.UpdateAreaPrices(context.Background(), areaID, &models.UpdateAreaPricesRequest{
		UserID: 1, VehicleType: "bike", PricePerHour: 20,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.UpdateAreaPrices(context.Background(), areaID, &models.UpdateAreaPricesRequest{
		UserID: ownerID, VehicleType: "plane", PricePerHour: 20,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSlotStatusBoard(t *testing.T) {
	slots, areas := &mockSlotRepo{}, &mockAreaRepo{}
	areas.On("GetByID", mock.Anything, areaID).Return(activeArea(), nil)
	slots.On("ListByArea", mock.Anything, areaID).Return([]domain.ParkingSlot{
		{ID: 1, SlotNumber: 1, IsActive: true},
		{ID: 2, SlotNumber: 2, IsActive: true},
		{ID: 3, SlotNumber: 3, IsActive: true},
		{ID: 4, SlotNumber: 4, IsActive: true},
	}, nil)

	reservations := []domain.Reservation{
		{ID: 10, SlotID: 1, Status: domain.ReservationConfirmed, IsParked: true, StartDateAndTime: now.Add(-2 * time.Hour)},
		{ID: 20, SlotID: 2, Status: domain.ReservationConfirmed, StartDateAndTime: now.Add(-10 * time.Minute)},
		{ID: 30, SlotID: 3, Status: domain.ReservationPending, CreatedAt: now.Add(-2 * time.Minute), StartDateAndTime: now.Add(time.Hour)},
		{ID: 40, SlotID: 4, Status: domain.ReservationConfirmed, StartDateAndTime: now.Add(-90 * time.Minute)},
	}

	resp, err := newService(slots, areas, reservations).SlotStatusBoard(context.Background(), areaID, ownerID)

	require.NoError(t, err)
	require.Len(t, resp.Slots, 4)
	assert.Equal(t, "occupied", resp.Slots[0].Occupancy)
	assert.Nil(t, resp.Slots[0].Until)
	assert.Equal(t, "arrival_grace", resp.Slots[1].Occupancy)
	require.NotNil(t, resp.Slots[1].Until)
	assert.Equal(t, now.Add(50*time.Minute).Format(domain.DateTimeFormat), *resp.Slots[1].Until)
	assert.Equal(t, "pending_hold", resp.Slots[2].Occupancy)
	assert.Equal(t, "free", resp.Slots[3].Occupancy)
	assert.Nil(t, resp.Slots[3].ReservationID)
	assert.Equal(t, map[string]int{"occupied": 1, "arrival_grace": 1, "pending_hold": 1, "free": 1}, resp.Counts)
}
