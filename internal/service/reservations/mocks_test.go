package reservations

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы переходы не меняли фикстуру теста
	res := *args.Get(0).(*domain.Reservation)
	return &res, args.Error(1)
}

func (m *mockReservationRepo) ListOpenBySlot(ctx context.Context, slotID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListByCustomer(ctx context.Context, customerID int64, status *domain.ReservationStatus) ([]domain.Reservation, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListByArea(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) Confirm(ctx context.Context, id int64, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockReservationRepo) MarkParked(ctx context.Context, id int64, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}

func (m *mockReservationRepo) Complete(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, now time.Time) error {
	return m.Called(ctx, id, paymentStatus, now).Error(0)
}

func (m *mockReservationRepo) Cancel(ctx context.Context, id int64, reason *string, now time.Time) error {
	return m.Called(ctx, id, reason, now).Error(0)
}

func (m *mockReservationRepo) MoveSlot(ctx context.Context, id int64, slotID int64, now time.Time) error {
	return m.Called(ctx, id, slotID, now).Error(0)
}

func (m *mockReservationRepo) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, now time.Time) error {
	return m.Called(ctx, id, status, now).Error(0)
}

// CreatePayment возвращает переданный платёж с ID из первого аргумента Return
func (m *mockReservationRepo) CreatePayment(ctx context.Context, payment *domain.ReservationPayment) (*domain.ReservationPayment, error) {
	args := m.Called(ctx, payment)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	payment.ID = args.Get(0).(int64)
	return payment, nil
}

func (m *mockReservationRepo) ListPayments(ctx context.Context, reservationID int64) ([]domain.ReservationPayment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReservationPayment), args.Error(1)
}

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

type basePolicy struct{}

func (basePolicy) Resolve(_ context.Context, _ int64, base domain.Policy) (domain.Policy, error) {
	return base, nil
}

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
