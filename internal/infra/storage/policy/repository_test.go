package policy

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var columns = []string{
	"id", "parking_area_id", "arrival_grace_minutes", "pending_hold_minutes",
	"booking_buffer_minutes", "created_at", "updated_at",
}

func TestRepository_Resolve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM parking_area_policies WHERE parking_area_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, 1, 20, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM parking_area_policies WHERE parking_area_id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(columns))

	repo := NewRepository(db)
	base := domain.DefaultPolicy()

	withOverride, err := repo.Resolve(context.Background(), 1, base)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, withOverride.ArrivalGrace)
	assert.Equal(t, base.PendingHold, withOverride.PendingHold)

	global, err := repo.Resolve(context.Background(), 2, base)
	require.NoError(t, err)
	assert.Equal(t, base, global)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Resolve_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM parking_area_policies")).WillReturnError(errors.New("boom"))

	_, err = NewRepository(db).Resolve(context.Background(), 1, domain.DefaultPolicy())
	assert.ErrorIs(t, err, ErrScanRow)
}

func TestRepository_ListByAreas(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE parking_area_id IN ($1,$2)")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(5, 2, nil, 1, 30, now, now))

	got, err := NewRepository(db).ListByAreas(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[2].BookingBufferMinutes)
	assert.Equal(t, 30, *got[2].BookingBufferMinutes)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM parking_area_policies")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).Delete(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}
