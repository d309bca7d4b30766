package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config is the process-wide configuration, loaded once at startup and
// injected everywhere else. Environment variables win over config files.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`

	DatabaseDriver string `mapstructure:"database_driver"` // postgres, mysql, sqlite
	DatabaseDSN    string `mapstructure:"database_dsn"`

	// EncryptionKey seals gateway credentials at rest. Any non-empty
	// string is accepted; it is hashed to a 256-bit key by the vault.
	EncryptionKey string `mapstructure:"encryption_key"`

	// Identity service (Firebase identitytoolkit REST).
	IdentityAPIKey  string `mapstructure:"identity_api_key"`
	IdentityBaseURL string `mapstructure:"identity_base_url"`

	// Base URL override for the OpenNode gateway, used by tests.
	OpenNodeBaseURL string `mapstructure:"opennode_base_url"`

	PluginsDir   string `mapstructure:"plugins_dir"`
	PluginRunner string `mapstructure:"plugin_runner"` // command used to run plugin migrate scripts
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NINJAPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", "ninjapay.db")
	v.SetDefault("identity_base_url", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("opennode_base_url", "https://api.opennode.com")
	v.SetDefault("plugins_dir", "./plugins")
	v.SetDefault("plugin_runner", "deno")

	v.SetConfigName("ninjapay")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	// AutomaticEnv does not populate Unmarshal unless keys are bound.
	for _, key := range []string{
		"listen_addr", "database_driver", "database_dsn", "encryption_key",
		"identity_api_key", "identity_base_url", "opennode_base_url",
		"plugins_dir", "plugin_runner",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if strings.TrimSpace(cfg.EncryptionKey) == "" {
		return nil, fmt.Errorf("config: encryption_key is required")
	}
	return &cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
