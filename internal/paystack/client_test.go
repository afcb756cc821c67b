package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenyiken/zikistore/internal/config"
)

func TestClient_InitializeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_xxx", r.Header.Get("Authorization"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buyer@example.com", req.Email)
		assert.Equal(t, 50000, req.Amount)
		assert.Equal(t, "order-1", req.Metadata.OrderID)
		assert.Equal(t, "user-1", req.Metadata.UserID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "ref-1"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(config.Paystack{SecretKey: "sk_test_xxx", APIURL: srv.URL})

	resp, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "buyer@example.com",
		Amount: 50000,
		Metadata: Metadata{
			OrderID: "order-1",
			UserID:  "user-1",
		},
		CallbackURL: "https://zikistore.example/thank-you",
	})
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, "https://checkout.paystack.com/abc123", resp.Data.AuthorizationURL)
}

func TestClient_InitializeTransaction_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(config.Paystack{SecretKey: "bad_key", APIURL: srv.URL})

	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:  "buyer@example.com",
		Amount: 100,
	})
	assert.Error(t, err)
}
