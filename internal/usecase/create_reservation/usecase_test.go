package create_reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/parkingslot"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	slots        *mockSlotRepo
	areas        *mockAreaRepo
	reservations *mockReservationRepo
	users        *mockUserClient
	notifier     *mockNotifier
	tx           *inlineTx
	metrics      *transitionRecorder
	uc           *UseCase
}

func newFixture(autoConfirm bool) *fixture {
	f := &fixture{
		slots:        &mockSlotRepo{},
		areas:        &mockAreaRepo{},
		reservations: &mockReservationRepo{},
		users:        &mockUserClient{},
		notifier:     &mockNotifier{},
		tx:           &inlineTx{},
		metrics:      &transitionRecorder{},
	}
	f.uc = NewUseCase(f.slots, f.areas, f.reservations, stubPolicyRepo{}, f.users, f.notifier, f.tx, f.metrics, Options{
		Policy:                domain.DefaultPolicy(),
		AutoConfirm:           autoConfirm,
		ClockSkew:             5 * time.Minute,
		MaxTransitionAttempts: 3,
	}, nopLogger{})
	f.uc.timeProvider = fixedTime{now: now}
	return f
}

func bookableSlot() *domain.ParkingSlot {
	return &domain.ParkingSlot{ID: 7, ParkingAreaID: 3, VehicleType: domain.VehicleCar, SlotNumber: 12, PricePerHour: 200, IsActive: true, Version: 4}
}

func activeArea() *domain.ParkingArea {
	return &domain.ParkingArea{
		ID:       3,
		IsActive: true,
		Subscription: &domain.Subscription{
			PaymentStatus:       domain.SubscriptionPaid,
			SubscriptionEndDate: now.Add(30 * 24 * time.Hour),
		},
	}
}

func created(id int64) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*domain.Reservation).ID = id
	}
}

func preBooking() *Request {
	return &Request{
		CustomerID:    ptr.Ptr(int64(42)),
		SlotID:        7,
		VehicleType:   "car",
		VehicleNumber: "dhaka-ga 11 2233",
		Type:          "pre_booking",
		StartTime:     ptr.Ptr(now.Add(3 * time.Hour)),
		EndTime:       ptr.Ptr(now.Add(5 * time.Hour)),
	}
}

func TestExecute_PreBookingAutoConfirmed(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(5), nil)
	f.reservations.On("Create", ctx, mock.AnythingOfType("*domain.Reservation")).
		Run(created(100)).
		Return(nil)
	f.reservations.On("Confirm", ctx, int64(100), now).Return(nil)
	f.users.On("GetCustomerWithGracefulDegradation", ctx, int64(42)).
		Return(&userservice.Customer{ID: 42, Phone: "+8801711000000"}, nil)
	f.notifier.On("Send", ctx, mock.Anything).Return(nil)

	resp, err := f.uc.Execute(ctx, preBooking())

	require.NoError(t, err)
	res := resp.Reservation
	assert.Equal(t, int64(100), res.ID)
	assert.Equal(t, domain.ReservationConfirmed, res.Status)
	assert.False(t, res.IsParked)
	assert.Equal(t, 200.0, res.PerHourRate)
	assert.Equal(t, "DHAKAGA112233", res.VehicleNumber)
	assert.Equal(t, now.Add(3*time.Hour), res.StartDateAndTime)
	assert.Equal(t, domain.PaymentPending, res.PaymentStatus)
	assert.Equal(t, int64(5), resp.SlotVersion)
	assert.Equal(t, []string{"create_pre_booking:ok"}, f.metrics.results)

	f.reservations.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestExecute_PreBookingStaysPendingWithoutAutoConfirm(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(5), nil)
	f.reservations.On("Create", ctx, mock.Anything).
		Run(created(101)).
		Return(nil)
	f.users.On("GetCustomerWithGracefulDegradation", ctx, int64(42)).
		Return(nil, userservice.ErrServiceDegraded)

	resp, err := f.uc.Execute(ctx, preBooking())

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, resp.Reservation.Status)
	assert.Equal(t, now, resp.Reservation.CreatedAt)
	f.reservations.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestExecute_WalkInIsParkedImmediately(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{
		{ID: 1, SlotID: 7, Status: domain.ReservationCompleted, IsParked: true, StartDateAndTime: now.Add(-4 * time.Hour)},
	}, nil)
	f.reservations.On("ListOpenByVehicleNumber", ctx, "ABC123").Return([]domain.Reservation{}, nil)
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(5), nil)
	f.reservations.On("Create", ctx, mock.Anything).
		Run(created(102)).
		Return(nil)

	resp, err := f.uc.Execute(ctx, &Request{SlotID: 7, VehicleType: "car", VehicleNumber: "abc 123", Type: "on_spot"})

	require.NoError(t, err)
	res := resp.Reservation
	assert.Equal(t, domain.ReservationConfirmed, res.Status)
	assert.True(t, res.IsParked)
	assert.Equal(t, now, res.StartDateAndTime)
	assert.Nil(t, res.CustomerID)
	f.reservations.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "GetCustomerWithGracefulDegradation", mock.Anything, mock.Anything)
}

func TestExecute_WalkInRejectedWhenVehicleHasOpenReservation(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
	f.reservations.On("ListOpenByVehicleNumber", ctx, "ABC123").Return([]domain.Reservation{
		{ID: 55, ParkingAreaID: 9, SlotID: 90, Status: domain.ReservationConfirmed, StartDateAndTime: now.Add(-10 * time.Minute)},
	}, nil)

	_, err := f.uc.Execute(ctx, &Request{SlotID: 7, VehicleType: "car", VehicleNumber: "ABC123", Type: "on_spot"})

	assert.ErrorIs(t, err, ErrConflict)
	f.slots.AssertNotCalled(t, "BumpVersion", mock.Anything, mock.Anything, mock.Anything)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"create_on_spot:conflict"}, f.metrics.results)
}

func TestExecute_WalkInVehicleOpenReservations(t *testing.T) {
	tests := []struct {
		name     string
		existing domain.Reservation
		conflict bool
	}{
		{
			name:     "confirmed no-show past arrival grace still holds the vehicle",
			existing: domain.Reservation{ID: 56, ParkingAreaID: 9, SlotID: 90, Status: domain.ReservationConfirmed, StartDateAndTime: now.Add(-3 * time.Hour)},
			conflict: true,
		},
		{
			name:     "live pending hold",
			existing: domain.Reservation{ID: 57, ParkingAreaID: 9, SlotID: 90, Status: domain.ReservationPending, StartDateAndTime: now.Add(time.Hour), CreatedAt: now.Add(-2 * time.Minute)},
			conflict: true,
		},
		{
			name:     "abandoned pending hold",
			existing: domain.Reservation{ID: 58, ParkingAreaID: 9, SlotID: 90, Status: domain.ReservationPending, StartDateAndTime: now.Add(time.Hour), CreatedAt: now.Add(-10 * time.Minute)},
			conflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			ctx := context.Background()

			f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
			f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
			f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
			f.reservations.On("ListOpenByVehicleNumber", ctx, "ABC123").Return([]domain.Reservation{tt.existing}, nil)
			f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(5), nil).Maybe()
			f.reservations.On("Create", ctx, mock.Anything).Run(created(105)).Return(nil).Maybe()

			_, err := f.uc.Execute(ctx, &Request{SlotID: 7, VehicleType: "car", VehicleNumber: "ABC123", Type: "on_spot"})

			if tt.conflict {
				assert.ErrorIs(t, err, ErrConflict)
				f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			f.reservations.AssertNumberOfCalls(t, "Create", 1)
		})
	}
}

func TestExecute_RejectsSlotHeldByAnotherReservation(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{
		{ID: 9, SlotID: 7, Status: domain.ReservationConfirmed, StartDateAndTime: now.Add(4 * time.Hour)},
	}, nil)

	_, err := f.uc.Execute(ctx, preBooking())

	assert.ErrorIs(t, err, ErrConflict)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_RetriesOnVersionConflict(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(0), slotRepo.ErrVersionConflict).Once()
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(5), nil).Once()
	f.reservations.On("Create", ctx, mock.Anything).
		Run(created(103)).
		Return(nil)
	f.reservations.On("Confirm", ctx, int64(103), now).Return(nil)
	f.users.On("GetCustomerWithGracefulDegradation", ctx, int64(42)).Return(&userservice.Customer{ID: 42}, nil)

	resp, err := f.uc.Execute(ctx, preBooking())

	require.NoError(t, err)
	assert.Equal(t, int64(103), resp.Reservation.ID)
	assert.Equal(t, 2, f.tx.calls)
	f.slots.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestExecute_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(activeArea(), nil)
	f.reservations.On("ListOpenBySlot", ctx, int64(7)).Return([]domain.Reservation{}, nil)
	f.slots.On("BumpVersion", ctx, int64(7), int64(4)).Return(int64(0), slotRepo.ErrVersionConflict)

	_, err := f.uc.Execute(ctx, preBooking())

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, f.tx.calls)
}

func TestExecute_StaleSlotVersionIsNotRetried(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)

	req := preBooking()
	req.SlotVersion = ptr.Ptr(int64(3))
	_, err := f.uc.Execute(ctx, req)

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, f.tx.calls)
}

func TestExecute_SlotChecks(t *testing.T) {
	inactive := bookableSlot()
	inactive.IsActive = false
	bike := bookableSlot()
	bike.VehicleType = domain.VehicleBike

	tests := []struct {
		name    string
		slot    *domain.ParkingSlot
		slotErr error
		wantErr error
	}{
		{name: "not found", slotErr: slotRepo.ErrSlotNotFound, wantErr: ErrSlotNotFound},
		{name: "inactive", slot: inactive, wantErr: ErrSlotUnavailable},
		{name: "vehicle type mismatch", slot: bike, wantErr: ErrInvalidInput},
		{name: "repository failure", slotErr: errors.New("db down"), wantErr: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			ctx := context.Background()
			if tt.slot != nil {
				f.slots.On("GetByID", ctx, int64(7)).Return(tt.slot, nil)
			} else {
				f.slots.On("GetByID", ctx, int64(7)).Return(nil, tt.slotErr)
			}

			_, err := f.uc.Execute(ctx, preBooking())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExecute_AreaWithLapsedSubscription(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	area := activeArea()
	area.Subscription.SubscriptionEndDate = now.Add(-time.Minute)
	f.slots.On("GetByID", ctx, int64(7)).Return(bookableSlot(), nil)
	f.areas.On("GetByID", ctx, int64(3)).Return(area, nil)

	_, err := f.uc.Execute(ctx, preBooking())
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{name: "missing slot", mutate: func(r *Request) { r.SlotID = 0 }},
		{name: "unknown type", mutate: func(r *Request) { r.Type = "reserved" }},
		{name: "empty vehicle number", mutate: func(r *Request) { r.VehicleNumber = " - " }},
		{name: "unknown vehicle type", mutate: func(r *Request) { r.VehicleType = "boat" }},
		{name: "pre_booking without start", mutate: func(r *Request) { r.StartTime = nil }},
		{name: "pre_booking without customer", mutate: func(r *Request) { r.CustomerID = nil }},
		{name: "start in the past", mutate: func(r *Request) { r.StartTime = ptr.Ptr(now.Add(-10 * time.Minute)) }},
		{name: "end before start", mutate: func(r *Request) { r.EndTime = ptr.Ptr(now.Add(time.Hour)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(true)
			req := preBooking()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, 0, f.tx.calls)
		})
	}
}

func TestExecute_StartWithinClockSkewAccepted(t *testing.T) {
	f := newFixture(true)
	req := preBooking()
	req.StartTime = ptr.Ptr(now.Add(-3 * time.Minute))

	window, err := resolveWindow(req, domain.ReservationPreBooking, now, f.uc.opts.ClockSkew)

	require.NoError(t, err)
	assert.Equal(t, now.Add(-3*time.Minute), window.Start)
}
