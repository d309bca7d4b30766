package domain

import (
	"context"
	"fmt"

	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
)

// GatewayAdapter is the capability set every payment gateway must offer.
// Adapters only make outbound calls; they never touch local state.
type GatewayAdapter interface {
	CreatePayLink(ctx context.Context, amount float64, memo string) (*PayLink, error)
	GetBalance(ctx context.Context) (*Balance, error)
	PayInvoice(ctx context.Context, invoice string) (*PaymentResult, error)
	GetTransactions(ctx context.Context) ([]Transaction, error)
	CheckStatus(ctx context.Context, chargeID string) (string, error)
}

// AdapterConfig carries decrypted gateway credentials plus an optional base
// URL override (tests point it at an httptest server; LNbits ignores it in
// favor of the per-record instance URL).
type AdapterConfig struct {
	Credentials fundingdomain.Credentials
	BaseURL     string
}

type AdapterFactory interface {
	Provider() fundingdomain.ProviderType
	NewAdapter(cfg AdapterConfig) (GatewayAdapter, error)
}

// UpstreamError carries the gateway's non-success response for diagnostics.
// It unwraps to ErrUpstream so callers can match with errors.Is.
type UpstreamError struct {
	Provider   fundingdomain.ProviderType
	Operation  string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
