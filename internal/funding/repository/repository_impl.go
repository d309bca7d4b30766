package repository

import (
	"context"
	"errors"

	"github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"gorm.io/gorm"
)

type fundingRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &fundingRepo{db: db}
}

func (r *fundingRepo) GetUser(ctx context.Context, uid string) (*domain.UserAccount, error) {
	var account domain.UserAccount
	if err := r.db.WithContext(ctx).First(&account, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *fundingRepo) ListProviders(ctx context.Context, uid string) ([]domain.FundingProvider, error) {
	var providers []domain.FundingProvider
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", uid).
		Order("position ASC").
		Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

// AppendProvider runs the whole read-modify-write in one transaction so two
// concurrent appends by the same user cannot lose a record.
func (r *fundingRepo) AppendProvider(ctx context.Context, uid string, record *domain.FundingProvider) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.FundingProvider{}).
			Where("user_uid = ?", uid).
			Count(&count).Error; err != nil {
			return err
		}

		record.UserUID = uid
		record.Position = int(count)
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		var account domain.UserAccount
		err := tx.First(&account, "uid = ?", uid).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			account = domain.UserAccount{UID: uid}
			if count == 0 {
				account.DefaultProvider = record.Provider
			}
			return tx.Create(&account).Error
		case err != nil:
			return err
		}

		if count == 0 && account.DefaultProvider == "" {
			account.DefaultProvider = record.Provider
			return tx.Save(&account).Error
		}
		return nil
	})
}

func (r *fundingRepo) UpdateDefaultProvider(ctx context.Context, uid string, provider domain.ProviderType) error {
	return r.db.WithContext(ctx).
		Model(&domain.UserAccount{}).
		Where("uid = ?", uid).
		Update("default_provider", provider).Error
}

func (r *fundingRepo) FindByInvoiceKey(ctx context.Context, key string) (*domain.FundingProvider, error) {
	return r.findByColumn(ctx, "provider_invoice_key", key)
}

func (r *fundingRepo) FindByAdminKey(ctx context.Context, key string) (*domain.FundingProvider, error) {
	return r.findByColumn(ctx, "provider_admin_key", key)
}

func (r *fundingRepo) findByColumn(ctx context.Context, column, key string) (*domain.FundingProvider, error) {
	var record domain.FundingProvider
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", key).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
