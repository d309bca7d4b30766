package domain

import (
	"context"
	"errors"

	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
)

var (
	ErrValidation          = errors.New("payment: invalid input")
	ErrUnsupportedProvider = errors.New("payment: unsupported provider")
	ErrUpstream            = errors.New("payment: upstream gateway error")
	ErrInvalidConfig       = errors.New("payment: invalid adapter config")
)

// Service is the payment façade: one entry point per operation. Each call
// resolves a funding provider, selects the matching adapter by provider
// tag and returns the normalized result. Resolution misses surface as
// funding.ErrNoProvider; nothing is retried.
type Service interface {
	CreatePayLink(ctx context.Context, resolve fundingdomain.ResolveInput, amount float64, memo string) (*PayLink, error)
	GetBalance(ctx context.Context, resolve fundingdomain.ResolveInput) (*Balance, error)
	PayInvoice(ctx context.Context, resolve fundingdomain.ResolveInput, invoice string) (*PaymentResult, error)
	GetTransactions(ctx context.Context, resolve fundingdomain.ResolveInput) ([]Transaction, error)
	CheckStatus(ctx context.Context, resolve fundingdomain.ResolveInput, chargeID string) (*StatusResult, error)
}
