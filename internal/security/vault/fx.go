package vault

import (
	"github.com/ninjapaylabs/ninjapay/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("security.vault",
	fx.Provide(func(cfg *config.Config) (*Vault, error) {
		return New(cfg.EncryptionKey)
	}),
)
