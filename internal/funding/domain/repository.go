package domain

import (
	"context"
)

type Repository interface {
	// GetUser returns nil when the account does not exist; absence is not
	// an error at this layer.
	GetUser(ctx context.Context, uid string) (*UserAccount, error)

	// ListProviders returns the user's records in insertion order.
	ListProviders(ctx context.Context, uid string) ([]FundingProvider, error)

	// AppendProvider inserts the record at the end of the user's sequence
	// inside one transaction. If the sequence was empty, the account's
	// default provider is set to the record's type.
	AppendProvider(ctx context.Context, uid string, record *FundingProvider) error

	// UpdateDefaultProvider overwrites the account's default provider type.
	UpdateDefaultProvider(ctx context.Context, uid string, provider ProviderType) error

	// FindByInvoiceKey / FindByAdminKey look a record up by its
	// system-issued routing key. Miss returns nil, not an error.
	FindByInvoiceKey(ctx context.Context, key string) (*FundingProvider, error)
	FindByAdminKey(ctx context.Context, key string) (*FundingProvider, error)
}
