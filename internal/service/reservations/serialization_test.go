package reservations

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ParkingService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/txmanager"
)

// newTxFixture собирает сервис поверх настоящего менеджера транзакций на sqlmock
func newTxFixture(t *testing.T, attempts int) (*fixture, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := newFixture()
	txMgr := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil)).WithSerializableAttempts(attempts)
	f.svc = NewService(f.reservations, f.slots, f.areas, basePolicy{}, txMgr, f.metrics, Options{
		Policy:                domain.DefaultPolicy(),
		ClockSkew:             5 * time.Minute,
		MaxTransitionAttempts: 3,
	}, nopLogger{})
	f.svc.timeProvider = fixedTime{now: now}
	return f, sqlMock
}

func unparked(id int64) *domain.Reservation {
	res := parked(id, -time.Hour)
	res.IsParked = false
	return res
}

func concurrentUpdate() error {
	return fmt.Errorf("%w: Cancel - execute update: %w", reservationRepo.ErrExecQuery, &pq.Error{Code: "40001"})
}

func TestCancel_SerializationFailureIsRetried(t *testing.T) {
	f, sqlMock := newTxFixture(t, 3)
	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	f.withReservation(unparked(14))
	f.reservations.On("Cancel", mock.Anything, int64(14), (*string)(nil), now).Return(concurrentUpdate()).Once()
	f.reservations.On("Cancel", mock.Anything, int64(14), (*string)(nil), now).Return(nil).Once()
	f.slots.On("BumpVersion", mock.Anything, slotID, int64(4)).Return(int64(5), nil)

	resp, err := f.svc.Cancel(ctx, 14, &models.CancelRequest{UserID: customerID})

	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	f.reservations.AssertNumberOfCalls(t, "Cancel", 2)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestCancel_SerializationFailureExhaustedIsConflict(t *testing.T) {
	f, sqlMock := newTxFixture(t, 2)
	for i := 0; i < 2; i++ {
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()
	}

	f.withReservation(unparked(15))
	f.reservations.On("Cancel", mock.Anything, int64(15), (*string)(nil), now).Return(concurrentUpdate())

	resp, err := f.svc.Cancel(ctx, 15, &models.CancelRequest{UserID: customerID})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	f.reservations.AssertNumberOfCalls(t, "Cancel", 2)
	f.slots.AssertNotCalled(t, "BumpVersion", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"Cancel:conflict"}, f.metrics.results)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAddPayment_RacingCompletionIsConflict(t *testing.T) {
	f, sqlMock := newTxFixture(t, 2)
	for i := 0; i < 2; i++ {
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()
	}

	f.reservations.On("GetByID", mock.Anything, int64(16)).Return(parked(16, time.Hour), nil)
	f.reservations.On("ListPayments", mock.Anything, int64(16)).Return([]domain.ReservationPayment{}, nil)
	f.reservations.On("CreatePayment", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: CreatePayment - execute insert: %w", reservationRepo.ErrExecQuery, &pq.Error{Code: "40001"}))

	resp, err := f.svc.AddPayment(ctx, 16, &models.AddPaymentRequest{UserID: customerID, Amount: 50, Method: "cash"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	f.reservations.AssertNumberOfCalls(t, "GetByID", 2)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestAddPayment_CompletedConcurrentlyIsRejected(t *testing.T) {
	f, sqlMock := newTxFixture(t, 2)
	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()

	res := parked(17, time.Hour)
	res.Status = domain.ReservationCompleted
	f.reservations.On("GetByID", mock.Anything, int64(17)).Return(res, nil)

	_, err := f.svc.AddPayment(ctx, 17, &models.AddPaymentRequest{UserID: customerID, Amount: 50, Method: "cash"})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	f.reservations.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
