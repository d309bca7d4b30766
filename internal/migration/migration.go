package migration

import (
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&fundingdomain.UserAccount{},
		&fundingdomain.FundingProvider{},
	); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
