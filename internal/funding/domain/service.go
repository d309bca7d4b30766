package domain

import (
	"context"
	"errors"
)

var (
	// ErrMissingFields covers absent required form fields on provider setup.
	ErrMissingFields = errors.New("funding: all fields are required")

	// ErrIndexOutOfRange is returned when set-default-provider addresses an
	// index outside the user's provider list.
	ErrIndexOutOfRange = errors.New("funding: provider index out of range")

	// ErrNoProvider means resolution produced nothing: no routing key
	// matched and the session user has no usable default.
	ErrNoProvider = errors.New("funding: no provider set")
)

type AddLNbitsInput struct {
	InstanceURL string
	InvoiceKey  string
	AdminKey    string
}

type AddOpenNodeInput struct {
	InvoiceKey string
	ReadAPIKey string
}

// ResolveInput carries everything the resolver may use: the two routing-key
// headers and, when a session exists, the authenticated uid. Header keys
// always win over the session default.
type ResolveInput struct {
	InvoiceKeyHeader string
	AdminKeyHeader   string
	UserUID          string
}

type Service interface {
	AddLNbits(ctx context.Context, uid string, input AddLNbitsInput) (*FundingProvider, error)
	AddOpenNode(ctx context.Context, uid string, input AddOpenNodeInput) (*FundingProvider, error)
	SetDefaultProvider(ctx context.Context, uid string, index int) error

	// GetUser returns the account (an empty shape when absent) and the
	// ordered provider list.
	GetUser(ctx context.Context, uid string) (*UserAccount, []FundingProvider, error)

	// Resolve picks the active record for a request, or ErrNoProvider.
	Resolve(ctx context.Context, input ResolveInput) (*FundingProvider, error)

	// OpenCredentials decrypts a record's gateway secrets.
	OpenCredentials(record *FundingProvider) (Credentials, error)
}
