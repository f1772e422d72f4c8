package notificationservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}

func TestClient_Send(t *testing.T) {
	var got Notice
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/sms", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nopLogger{})
	err := client.Send(context.Background(), Notice{Phone: "+79990001122", Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "hi", got.Message)
}

func TestClient_Send_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second, nopLogger{}).Send(context.Background(), Notice{Phone: "1"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "****1122", maskPhone("+79990001122"))
	assert.Equal(t, "****", maskPhone("12"))
}
