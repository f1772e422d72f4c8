package areas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

func TestRedisCache_Key(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "parking:", time.Minute, nopLogger{})
	ctx := context.Background()

	mock.ExpectGet("parking:areas:generation").RedisNil()
	key, err := c.Key(ctx, geo.Point{Lat: 55.75581, Lng: 37.61729}, 5000)
	require.NoError(t, err)
	assert.Equal(t, "parking:areas:nearby:0:55.7558:37.6173:5000", key)

	mock.ExpectGet("parking:areas:generation").SetVal("3")
	key, err = c.Key(ctx, geo.Point{Lat: 1, Lng: 2}, 100)
	require.NoError(t, err)
	assert.Equal(t, "parking:areas:nearby:3:1.0000:2.0000:100", key)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "parking:", time.Minute, nopLogger{})
	ctx := context.Background()

	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	area := domain.ParkingArea{
		ID:           1,
		Name:         "Central",
		Latitude:     55.75,
		Longitude:    37.61,
		IsActive:     true,
		Subscription: &domain.Subscription{ID: 9, PaymentStatus: domain.SubscriptionPaid, SubscriptionEndDate: end},
	}

	payload := `[{"id":1,"owner_id":0,"name":"Central","address":"","lat":55.75,"lng":37.61,"subscription_id":9,"payment_status":"PAID","subscription_end_date":"2030-01-01T00:00:00Z"}]`
	mock.ExpectSet("k", payload, time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", []domain.ParkingArea{area}))

	mock.ExpectGet("k").SetVal(payload)
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Central", got[0].Name)
	assert.True(t, got[0].AcceptsBookings(time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "parking:", time.Minute, nopLogger{})

	mock.ExpectGet("k").RedisNil()
	got, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRedisCache_GetCorrupted(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "parking:", time.Minute, nopLogger{})

	mock.ExpectGet("k").SetVal("not json")
	mock.ExpectDel("k").SetVal(1)

	_, ok, err := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrDecode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "parking:", time.Minute, nopLogger{})

	mock.ExpectIncr("parking:areas:generation").SetVal(4)
	require.NoError(t, c.Invalidate(context.Background()))

	mock.ExpectIncr("parking:areas:generation").SetErr(errors.New("down"))
	assert.ErrorIs(t, c.Invalidate(context.Background()), ErrCache)
}
