package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retouchlab-backend/internal/notify"
)

func TestClient_DisabledWithoutConfig(t *testing.T) {
	client := notify.NewClient("", "", "studio@retouchlab.example")
	assert.False(t, client.Enabled())

	// A disabled client silently drops sends instead of erroring.
	err := client.OrderPaid(context.Background(), "client@example.com", "order-1", 3, 4200, "eur")
	assert.NoError(t, err)
}

func TestClient_OrderPaidSendsMessage(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := notify.NewClient(server.URL, "test-key", "studio@retouchlab.example")
	err := client.OrderPaid(context.Background(), "client@example.com", "order-1", 3, 4200, "eur")
	require.NoError(t, err)

	assert.Equal(t, "studio@retouchlab.example", received["from"])
	assert.Equal(t, "client@example.com", received["to"])
	assert.Contains(t, received["text"], "42.00 EUR")
	assert.Contains(t, received["text"], "3 photos")
}

func TestClient_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := notify.NewClient(server.URL, "test-key", "studio@retouchlab.example")
	err := client.OrderDelivered(context.Background(), "client@example.com", "order-1", 5)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}
