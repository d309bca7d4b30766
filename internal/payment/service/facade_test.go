package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/ninjapaylabs/ninjapay/internal/config"
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	fundingrepo "github.com/ninjapaylabs/ninjapay/internal/funding/repository"
	fundingservice "github.com/ninjapaylabs/ninjapay/internal/funding/service"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters/lnbits"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters/opennode"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
	"github.com/ninjapaylabs/ninjapay/internal/security/vault"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type facadeFixture struct {
	facade  domain.Service
	funding fundingdomain.Service
}

func newFacadeFixture(t *testing.T, opennodeURL string) *facadeFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&fundingdomain.UserAccount{}, &fundingdomain.FundingProvider{}))

	v, err := vault.New("test-key")
	require.NoError(t, err)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	funding := fundingservice.New(fundingservice.Params{
		Repo:   fundingrepo.Provide(db),
		Vault:  v,
		GenID:  node,
		Logger: zap.NewNop(),
	})

	facade := New(Params{
		Registry: adapters.NewRegistry(lnbits.NewFactory(), opennode.NewFactory()),
		Funding:  funding,
		Config:   &config.Config{OpenNodeBaseURL: opennodeURL},
		Logger:   zap.NewNop(),
	})

	return &facadeFixture{facade: facade, funding: funding}
}

func TestCreatePayLinkRejectsNonPositiveAmount(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	fx := newFacadeFixture(t, server.URL)
	_, err := fx.funding.AddOpenNode(context.Background(), "uid-1", fundingdomain.AddOpenNodeInput{
		InvoiceKey: "ik", ReadAPIKey: "rk",
	})
	require.NoError(t, err)

	resolve := fundingdomain.ResolveInput{UserUID: "uid-1"}
	_, err = fx.facade.CreatePayLink(context.Background(), resolve, 0, "memo")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = fx.facade.CreatePayLink(context.Background(), resolve, -5, "memo")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.False(t, called, "no outbound call may be made")
}

func TestCreatePayLinkNoProviderSet(t *testing.T) {
	fx := newFacadeFixture(t, "http://unused.invalid")

	_, err := fx.facade.CreatePayLink(context.Background(), fundingdomain.ResolveInput{UserUID: "uid-empty"}, 10, "memo")
	require.ErrorIs(t, err, fundingdomain.ErrNoProvider)
}

func TestGetBalanceOpenNodeEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/account/balance", r.URL.Path)
		// The read key, decrypted from the stored record.
		require.Equal(t, "Bearer rk-secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"balance":{"BTC":"0.00125"}}}`))
	}))
	defer server.Close()

	fx := newFacadeFixture(t, server.URL)
	_, err := fx.funding.AddOpenNode(context.Background(), "uid-1", fundingdomain.AddOpenNodeInput{
		InvoiceKey: "ik-secret", ReadAPIKey: "rk-secret",
	})
	require.NoError(t, err)

	balance, err := fx.facade.GetBalance(context.Background(), fundingdomain.ResolveInput{UserUID: "uid-1"})
	require.NoError(t, err)
	require.Equal(t, 0.00125, balance.Balance)
}

func TestPayInvoiceEmptyFailsBeforeResolution(t *testing.T) {
	fx := newFacadeFixture(t, "http://unused.invalid")

	_, err := fx.facade.PayInvoice(context.Background(), fundingdomain.ResolveInput{UserUID: "uid-1"}, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpstreamFailureSurfacesAsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("gateway exploded"))
	}))
	defer server.Close()

	fx := newFacadeFixture(t, server.URL)
	_, err := fx.funding.AddOpenNode(context.Background(), "uid-1", fundingdomain.AddOpenNodeInput{
		InvoiceKey: "ik", ReadAPIKey: "rk",
	})
	require.NoError(t, err)

	_, err = fx.facade.GetTransactions(context.Background(), fundingdomain.ResolveInput{UserUID: "uid-1"})
	require.ErrorIs(t, err, domain.ErrUpstream)
}

func TestCheckStatusByRoutingKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges/charge-9", r.URL.Path)
		w.Write([]byte(`{"data":{"status":"paid"}}`))
	}))
	defer server.Close()

	fx := newFacadeFixture(t, server.URL)
	record, err := fx.funding.AddOpenNode(context.Background(), "uid-1", fundingdomain.AddOpenNodeInput{
		InvoiceKey: "ik", ReadAPIKey: "rk",
	})
	require.NoError(t, err)

	// No session uid at all; the routing key alone resolves the record.
	result, err := fx.facade.CheckStatus(context.Background(),
		fundingdomain.ResolveInput{InvoiceKeyHeader: record.ProviderInvoiceKey}, "charge-9")
	require.NoError(t, err)
	require.Equal(t, "charge-9", result.ChargeID)
	require.Equal(t, "paid", result.Status)
}
