package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ninjapaylabs/ninjapay/internal/config"
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/payment/adapters"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Registry *adapters.Registry
	Funding  fundingdomain.Service
	Config   *config.Config
	Logger   *zap.Logger
}

type FacadeImpl struct {
	registry *adapters.Registry
	funding  fundingdomain.Service
	config   *config.Config
	logger   *zap.Logger
}

func New(p Params) domain.Service {
	return &FacadeImpl{
		registry: p.Registry,
		funding:  p.Funding,
		config:   p.Config,
		logger:   p.Logger,
	}
}

// adapterFor resolves the active funding provider for the request, decrypts
// its credentials and instantiates the matching gateway adapter.
func (s *FacadeImpl) adapterFor(ctx context.Context, resolve fundingdomain.ResolveInput) (domain.GatewayAdapter, fundingdomain.ProviderType, error) {
	record, err := s.funding.Resolve(ctx, resolve)
	if err != nil {
		return nil, "", err
	}

	creds, err := s.funding.OpenCredentials(record)
	if err != nil {
		return nil, "", err
	}

	cfg := domain.AdapterConfig{Credentials: creds}
	if record.Provider == fundingdomain.ProviderOpenNode {
		cfg.BaseURL = s.config.OpenNodeBaseURL
	}

	adapter, err := s.registry.Adapter(record.Provider, cfg)
	if err != nil {
		return nil, "", err
	}
	return adapter, record.Provider, nil
}

func (s *FacadeImpl) CreatePayLink(ctx context.Context, resolve fundingdomain.ResolveInput, amount float64, memo string) (*domain.PayLink, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	adapter, provider, err := s.adapterFor(ctx, resolve)
	if err != nil {
		return nil, err
	}

	link, err := adapter.CreatePayLink(ctx, amount, memo)
	if err != nil {
		return nil, s.gatewayError(provider, "createPayLink", err)
	}
	return link, nil
}

func (s *FacadeImpl) GetBalance(ctx context.Context, resolve fundingdomain.ResolveInput) (*domain.Balance, error) {
	adapter, provider, err := s.adapterFor(ctx, resolve)
	if err != nil {
		return nil, err
	}

	balance, err := adapter.GetBalance(ctx)
	if err != nil {
		return nil, s.gatewayError(provider, "getBalance", err)
	}
	return balance, nil
}

func (s *FacadeImpl) PayInvoice(ctx context.Context, resolve fundingdomain.ResolveInput, invoice string) (*domain.PaymentResult, error) {
	if strings.TrimSpace(invoice) == "" {
		return nil, fmt.Errorf("%w: payment request is required", domain.ErrValidation)
	}

	adapter, provider, err := s.adapterFor(ctx, resolve)
	if err != nil {
		return nil, err
	}

	result, err := adapter.PayInvoice(ctx, invoice)
	if err != nil {
		return nil, s.gatewayError(provider, "payInvoice", err)
	}
	return result, nil
}

func (s *FacadeImpl) GetTransactions(ctx context.Context, resolve fundingdomain.ResolveInput) ([]domain.Transaction, error) {
	adapter, provider, err := s.adapterFor(ctx, resolve)
	if err != nil {
		return nil, err
	}

	transactions, err := adapter.GetTransactions(ctx)
	if err != nil {
		return nil, s.gatewayError(provider, "getTransactions", err)
	}
	return transactions, nil
}

func (s *FacadeImpl) CheckStatus(ctx context.Context, resolve fundingdomain.ResolveInput, chargeID string) (*domain.StatusResult, error) {
	if strings.TrimSpace(chargeID) == "" {
		return nil, fmt.Errorf("%w: chargeId is required", domain.ErrValidation)
	}

	adapter, provider, err := s.adapterFor(ctx, resolve)
	if err != nil {
		return nil, err
	}

	status, err := adapter.CheckStatus(ctx, chargeID)
	if err != nil {
		return nil, s.gatewayError(provider, "checkStatus", err)
	}
	return &domain.StatusResult{ChargeID: chargeID, Status: status}, nil
}

// gatewayError logs upstream detail and passes the taxonomy error through.
// Validation errors from adapters are not upstream failures and pass as-is.
func (s *FacadeImpl) gatewayError(provider fundingdomain.ProviderType, operation string, err error) error {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error("gateway call failed",
			zap.String("provider", string(provider)),
			zap.String("operation", operation),
			zap.Int("status", upstream.StatusCode),
			zap.String("body", upstream.Body))
		return err
	}
	if errors.Is(err, domain.ErrValidation) {
		return err
	}

	s.logger.Error("gateway call failed",
		zap.String("provider", string(provider)),
		zap.String("operation", operation),
		zap.Error(err))
	return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, provider, operation, err)
}
