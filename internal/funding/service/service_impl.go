package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/security/vault"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo   domain.Repository
	Vault  *vault.Vault
	GenID  *snowflake.Node
	Logger *zap.Logger
}

type ServiceImpl struct {
	repo   domain.Repository
	vault  *vault.Vault
	genID  *snowflake.Node
	logger *zap.Logger
}

func New(p Params) domain.Service {
	return &ServiceImpl{
		repo:   p.Repo,
		vault:  p.Vault,
		genID:  p.GenID,
		logger: p.Logger,
	}
}

const (
	invoiceKeyPrefix = "p_ik_"
	adminKeyPrefix   = "p_ak_"
	routingKeyLength = 10
)

// newRoutingKey issues an opaque token external callers present instead of
// a session cookie: prefix plus 10 hex characters.
func (s *ServiceImpl) newRoutingKey(prefix string) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + entropy[:routingKeyLength]
}

func (s *ServiceImpl) AddLNbits(ctx context.Context, uid string, input domain.AddLNbitsInput) (*domain.FundingProvider, error) {
	instanceURL := strings.TrimSpace(input.InstanceURL)
	invoiceKey := strings.TrimSpace(input.InvoiceKey)
	adminKey := strings.TrimSpace(input.AdminKey)
	if instanceURL == "" || invoiceKey == "" || adminKey == "" {
		return nil, domain.ErrMissingFields
	}

	sealedInvoiceKey, err := s.vault.Seal(invoiceKey)
	if err != nil {
		return nil, err
	}
	sealedAdminKey, err := s.vault.Seal(adminKey)
	if err != nil {
		return nil, err
	}

	record := &domain.FundingProvider{
		ID:                 s.genID.Generate(),
		Provider:           domain.ProviderLNbits,
		InstanceURL:        strings.TrimRight(instanceURL, "/"),
		InvoiceKey:         sealedInvoiceKey,
		AdminKey:           sealedAdminKey,
		ProviderInvoiceKey: s.newRoutingKey(invoiceKeyPrefix),
		ProviderAdminKey:   s.newRoutingKey(adminKeyPrefix),
	}
	if err := s.repo.AppendProvider(ctx, uid, record); err != nil {
		return nil, err
	}

	s.logger.Info("funding provider added",
		zap.String("uid", uid),
		zap.String("provider", string(domain.ProviderLNbits)))
	return record, nil
}

func (s *ServiceImpl) AddOpenNode(ctx context.Context, uid string, input domain.AddOpenNodeInput) (*domain.FundingProvider, error) {
	invoiceKey := strings.TrimSpace(input.InvoiceKey)
	readAPIKey := strings.TrimSpace(input.ReadAPIKey)
	if invoiceKey == "" || readAPIKey == "" {
		return nil, domain.ErrMissingFields
	}

	sealedInvoiceKey, err := s.vault.Seal(invoiceKey)
	if err != nil {
		return nil, err
	}
	sealedReadAPIKey, err := s.vault.Seal(readAPIKey)
	if err != nil {
		return nil, err
	}

	record := &domain.FundingProvider{
		ID:                 s.genID.Generate(),
		Provider:           domain.ProviderOpenNode,
		InvoiceKey:         sealedInvoiceKey,
		ReadAPIKey:         sealedReadAPIKey,
		ProviderInvoiceKey: s.newRoutingKey(invoiceKeyPrefix),
		ProviderAdminKey:   s.newRoutingKey(adminKeyPrefix),
	}
	if err := s.repo.AppendProvider(ctx, uid, record); err != nil {
		return nil, err
	}

	s.logger.Info("funding provider added",
		zap.String("uid", uid),
		zap.String("provider", string(domain.ProviderOpenNode)))
	return record, nil
}

func (s *ServiceImpl) SetDefaultProvider(ctx context.Context, uid string, index int) error {
	providers, err := s.repo.ListProviders(ctx, uid)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(providers) {
		return domain.ErrIndexOutOfRange
	}
	return s.repo.UpdateDefaultProvider(ctx, uid, providers[index].Provider)
}

func (s *ServiceImpl) GetUser(ctx context.Context, uid string) (*domain.UserAccount, []domain.FundingProvider, error) {
	account, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		account = &domain.UserAccount{UID: uid}
	}
	providers, err := s.repo.ListProviders(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return account, providers, nil
}

// Resolve implements the precedence chain: invoice-key header, then
// admin-key header, then the session user's default provider. Header keys
// win even when a session is present so gateway integrations can call the
// payment endpoints without ever logging in.
func (s *ServiceImpl) Resolve(ctx context.Context, input domain.ResolveInput) (*domain.FundingProvider, error) {
	if key := strings.TrimSpace(input.InvoiceKeyHeader); key != "" {
		record, err := s.repo.FindByInvoiceKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}

	if key := strings.TrimSpace(input.AdminKeyHeader); key != "" {
		record, err := s.repo.FindByAdminKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}

	if input.UserUID != "" {
		account, err := s.repo.GetUser(ctx, input.UserUID)
		if err != nil {
			return nil, err
		}
		if account != nil && account.DefaultProvider != "" {
			providers, err := s.repo.ListProviders(ctx, input.UserUID)
			if err != nil {
				return nil, err
			}
			for i := range providers {
				if providers[i].Provider == account.DefaultProvider {
					return &providers[i], nil
				}
			}
		}
	}

	return nil, domain.ErrNoProvider
}

func (s *ServiceImpl) OpenCredentials(record *domain.FundingProvider) (domain.Credentials, error) {
	creds := domain.Credentials{InstanceURL: record.InstanceURL}

	if record.InvoiceKey != "" {
		invoiceKey, err := s.vault.Open(record.InvoiceKey)
		if err != nil {
			return domain.Credentials{}, err
		}
		creds.InvoiceKey = invoiceKey
	}
	if record.AdminKey != "" {
		adminKey, err := s.vault.Open(record.AdminKey)
		if err != nil {
			return domain.Credentials{}, err
		}
		creds.AdminKey = adminKey
	}
	if record.ReadAPIKey != "" {
		readAPIKey, err := s.vault.Open(record.ReadAPIKey)
		if err != nil {
			return domain.Credentials{}, err
		}
		creds.ReadAPIKey = readAPIKey
	}
	return creds, nil
}
