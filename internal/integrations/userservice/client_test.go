package userservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_GetCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/users/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"Ivan","phone":"+79990000000"}`))
		case "/internal/users/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})
	ctx := context.Background()

	customer, err := client.GetCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "+79990000000", customer.Phone)

	_, err = client.GetCustomer(ctx, 2)
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = client.GetCustomer(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_GracefulDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/internal/users/2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})

	_, err := client.GetCustomerWithGracefulDegradation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrServiceDegraded)

	_, err = client.GetCustomerWithGracefulDegradation(context.Background(), 2)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
