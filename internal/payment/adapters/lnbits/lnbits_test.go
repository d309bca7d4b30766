package lnbits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.Handler) domain.GatewayAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewFactory().NewAdapter(domain.AdapterConfig{
		Credentials: fundingdomain.Credentials{
			InstanceURL: server.URL,
			InvoiceKey:  "invoice-key",
			AdminKey:    "admin-key",
		},
	})
	require.NoError(t, err)
	return adapter
}

func TestCreatePayLink(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/payments", r.URL.Path)
		// Writes go out with the admin key.
		require.Equal(t, "admin-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, false, body["out"])
		require.Equal(t, float64(100), body["amount"])
		require.Equal(t, "coffee", body["memo"])

		json.NewEncoder(w).Encode(map[string]any{
			"payment_request": "lnbc1...",
			"payment_hash":    "hash123",
		})
	}))

	link, err := adapter.CreatePayLink(context.Background(), 100, "coffee")
	require.NoError(t, err)
	require.Equal(t, "lnbc1...", link.ExternalReference)
	require.Equal(t, "hash123", link.ChargeID)
	require.NotEmpty(t, link.Raw)
}

func TestGetBalanceUsesInvoiceKey(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/wallet", r.URL.Path)
		require.Equal(t, "invoice-key", r.Header.Get("X-Api-Key"))
		json.NewEncoder(w).Encode(map[string]any{"balance": 21000.0})
	}))

	balance, err := adapter.GetBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, 21000.0, balance.Balance)
}

func TestPayInvoiceEmptyIsValidationError(t *testing.T) {
	called := false
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := adapter.PayInvoice(context.Background(), "  ")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.False(t, called, "no network call may be attempted")
}

func TestPayInvoice(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "admin-key", r.Header.Get("X-Api-Key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, true, body["out"])
		require.Equal(t, "lnbc1invoice", body["bolt11"])
		json.NewEncoder(w).Encode(map[string]any{"payment_hash": "h1", "status": "complete"})
	}))

	result, err := adapter.PayInvoice(context.Background(), "lnbc1invoice")
	require.NoError(t, err)
	require.Equal(t, "h1", result.ID)
	require.Equal(t, "complete", result.Status)
}

func TestGetTransactionsPreservesOrder(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "admin-key", r.Header.Get("X-Api-Key"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"payment_hash": "h2", "status": "pending", "amount": 5.0, "timestamp": "2026-08-02"},
			{"payment_hash": "h1", "status": "paid", "amount": 10.0, "timestamp": "2026-08-01"},
		})
	}))

	transactions, err := adapter.GetTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	require.Equal(t, "h2", transactions[0].ID)
	require.Equal(t, "h1", transactions[1].ID)
}

func TestCheckStatusReducesPaymentObject(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/payments/hash123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"paid": true, "preimage": "deadbeef"})
	}))

	status, err := adapter.CheckStatus(context.Background(), "hash123")
	require.NoError(t, err)
	require.Equal(t, "paid", status)
}

func TestUpstreamErrorCarriesBody(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))

	_, err := adapter.GetBalance(context.Background())
	require.ErrorIs(t, err, domain.ErrUpstream)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusForbidden, upstream.StatusCode)
	require.Contains(t, upstream.Body, "invalid key")
}

func TestFactoryRejectsMissingConfig(t *testing.T) {
	_, err := NewFactory().NewAdapter(domain.AdapterConfig{})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
