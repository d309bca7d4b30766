package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/funding/repository"
	"github.com/ninjapaylabs/ninjapay/internal/security/vault"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserAccount{}, &domain.FundingProvider{}))

	v, err := vault.New("test-key")
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Repo:   repository.Provide(db),
		Vault:  v,
		GenID:  node,
		Logger: zap.NewNop(),
	})
}

func TestAddProviderFirstProviderWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddOpenNode(ctx, "uid-1", domain.AddOpenNodeInput{
		InvoiceKey: "on-invoice",
		ReadAPIKey: "on-read",
	})
	require.NoError(t, err)

	account, providers, err := svc.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, providers, 1)
	require.Equal(t, domain.ProviderOpenNode, account.DefaultProvider)

	// A second provider must not displace the default.
	_, err = svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ln-invoice",
		AdminKey:    "ln-admin",
	})
	require.NoError(t, err)

	account, providers, err = svc.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, providers, 2)
	require.Equal(t, domain.ProviderOpenNode, account.DefaultProvider)
	require.Equal(t, 0, providers[0].Position)
	require.Equal(t, 1, providers[1].Position)
}

func TestAddProviderValidatesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{InstanceURL: "https://x"})
	require.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = svc.AddOpenNode(ctx, "uid-1", domain.AddOpenNodeInput{InvoiceKey: "only"})
	require.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestRoutingKeyFormat(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.AddLNbits(context.Background(), "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ik",
		AdminKey:    "ak",
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(record.ProviderInvoiceKey, "p_ik_"))
	require.True(t, strings.HasPrefix(record.ProviderAdminKey, "p_ak_"))
	require.Len(t, record.ProviderInvoiceKey, len("p_ik_")+10)
	require.Len(t, record.ProviderAdminKey, len("p_ak_")+10)
}

func TestSetDefaultProvider(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ik",
		AdminKey:    "ak",
	})
	require.NoError(t, err)
	_, err = svc.AddOpenNode(ctx, "uid-1", domain.AddOpenNodeInput{
		InvoiceKey: "on-ik",
		ReadAPIKey: "on-rk",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetDefaultProvider(ctx, "uid-1", 1))
	account, _, err := svc.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, domain.ProviderOpenNode, account.DefaultProvider)
}

func TestSetDefaultProviderIndexOutOfRange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ik",
		AdminKey:    "ak",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.SetDefaultProvider(ctx, "uid-1", 1), domain.ErrIndexOutOfRange)
	require.ErrorIs(t, svc.SetDefaultProvider(ctx, "uid-1", -1), domain.ErrIndexOutOfRange)

	// State must be unchanged after the failed calls.
	account, _, err := svc.GetUser(ctx, "uid-1")
	require.NoError(t, err)
	require.Equal(t, domain.ProviderLNbits, account.DefaultProvider)
}

func TestResolveByEitherRoutingKey(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ik",
		AdminKey:    "ak",
	})
	require.NoError(t, err)

	byInvoice, err := svc.Resolve(ctx, domain.ResolveInput{InvoiceKeyHeader: record.ProviderInvoiceKey})
	require.NoError(t, err)
	require.Equal(t, record.ID, byInvoice.ID)

	byAdmin, err := svc.Resolve(ctx, domain.ResolveInput{AdminKeyHeader: record.ProviderAdminKey})
	require.NoError(t, err)
	require.Equal(t, record.ID, byAdmin.ID)
}

func TestResolveHeaderBeatsSessionDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// uid-1's default is LNbits; uid-2 owns an OpenNode record.
	_, err := svc.AddLNbits(ctx, "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "ik",
		AdminKey:    "ak",
	})
	require.NoError(t, err)
	other, err := svc.AddOpenNode(ctx, "uid-2", domain.AddOpenNodeInput{
		InvoiceKey: "on-ik",
		ReadAPIKey: "on-rk",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, domain.ResolveInput{
		InvoiceKeyHeader: other.ProviderInvoiceKey,
		UserUID:          "uid-1",
	})
	require.NoError(t, err)
	require.Equal(t, other.ID, resolved.ID)
	require.Equal(t, domain.ProviderOpenNode, resolved.Provider)
}

func TestResolveFallsBackToSessionDefault(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.AddOpenNode(ctx, "uid-1", domain.AddOpenNodeInput{
		InvoiceKey: "on-ik",
		ReadAPIKey: "on-rk",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, domain.ResolveInput{UserUID: "uid-1"})
	require.NoError(t, err)
	require.Equal(t, record.ID, resolved.ID)
}

func TestResolveNoProvider(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Resolve(context.Background(), domain.ResolveInput{UserUID: "nobody"})
	require.ErrorIs(t, err, domain.ErrNoProvider)

	_, err = svc.Resolve(context.Background(), domain.ResolveInput{InvoiceKeyHeader: "p_ik_unknown"})
	require.ErrorIs(t, err, domain.ErrNoProvider)
}

func TestOpenCredentialsRoundTrip(t *testing.T) {
	svc := newTestService(t)

	record, err := svc.AddLNbits(context.Background(), "uid-1", domain.AddLNbitsInput{
		InstanceURL: "https://lnbits.example.com",
		InvoiceKey:  "plain-invoice",
		AdminKey:    "plain-admin",
	})
	require.NoError(t, err)

	// Stored columns must be sealed, not the raw secrets.
	require.NotEqual(t, "plain-invoice", record.InvoiceKey)
	require.NotEqual(t, "plain-admin", record.AdminKey)

	creds, err := svc.OpenCredentials(record)
	require.NoError(t, err)
	require.Equal(t, "plain-invoice", creds.InvoiceKey)
	require.Equal(t, "plain-admin", creds.AdminKey)
	require.Equal(t, "https://lnbits.example.com", creds.InstanceURL)
}
