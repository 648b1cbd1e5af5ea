package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telestore/telestore/internal/config"
	"github.com/telestore/telestore/internal/payment/domain"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, createURL, statusURL string) domain.Provider {
	t.Helper()
	settings, err := config.NewSettingsHolder()
	require.NoError(t, err)

	cfg := config.Config{
		SiteURL:            "https://shop.example",
		ProviderMerchantID: "merchant-1",
		ProviderAPIKey:     "secret-1",
		ProviderCreateURL:  createURL,
		ProviderStatusURL:  statusURL,
	}
	return NewClient(cfg, settings, zap.NewNop())
}

func TestCreateTransaction(t *testing.T) {
	var captured struct {
		method  string
		headers http.Header
		body    map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))
		_ = json.NewEncoder(w).Encode(map[string]string{"redirect": "https://pay.example/tx/1"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "")

	redirect, err := client.CreateTransaction(context.Background(), "pay-1", 1500)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/tx/1", redirect)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "merchant-1", captured.headers.Get("X-MerchantId"))
	assert.Equal(t, "secret-1", captured.headers.Get("X-Secret"))

	assert.Equal(t, "pay-1", captured.body["id"])
	details, ok := captured.body["paymentDetails"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1500), details["amount"])
	assert.Equal(t, "RUB", details["currency"])
	assert.Equal(t, "https://shop.example/payment/pay-1", captured.body["return"])
}

func TestCreateTransactionMissingRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "")

	_, err := client.CreateTransaction(context.Background(), "pay-1", 1500)
	assert.ErrorIs(t, err, domain.ErrNoRedirect)
}

func TestTransactionStatusSubstitutesAndNormalizes(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "  CONFIRMED "})
	}))
	defer srv.Close()

	client := newTestClient(t, "", srv.URL+"/transaction/{payment_id}")

	status, err := client.TransactionStatus(context.Background(), "pay-9")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status)
	assert.Equal(t, "/transaction/pay-9", path)
}

func TestTransactionStatusBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, "", srv.URL+"/{payment_id}")

	_, err := client.TransactionStatus(context.Background(), "pay-9")
	assert.Error(t, err)
}
