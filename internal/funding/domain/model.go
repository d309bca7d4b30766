package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProviderType tags which external payment gateway a credential set targets.
type ProviderType string

const (
	ProviderLNbits   ProviderType = "lnbits"
	ProviderOpenNode ProviderType = "opennode"
)

func (p ProviderType) Valid() bool {
	return p == ProviderLNbits || p == ProviderOpenNode
}

// UserAccount is keyed by the opaque subject identifier issued by the
// identity service. DefaultProvider is set automatically when the first
// funding provider is added.
type UserAccount struct {
	UID             string       `json:"uid" gorm:"primaryKey;type:varchar(128)"`
	DefaultProvider ProviderType `json:"default_provider" gorm:"type:varchar(20)"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt       time.Time    `json:"updated_at" gorm:"not null"`
}

func (UserAccount) TableName() string { return "user_accounts" }

// FundingProvider is one stored credential set. Gateway secrets are sealed
// by the vault before insert; the system-issued provider keys stay
// plaintext because they are lookup columns. Rows are immutable after
// creation and are never deleted.
type FundingProvider struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	UserUID  string       `json:"-" gorm:"type:varchar(128);not null;index"`
	Provider ProviderType `json:"provider" gorm:"type:varchar(20);not null"`

	// LNbits credentials (InstanceURL is not a secret and stays readable).
	InstanceURL string `json:"instance_url,omitempty" gorm:"type:text"`
	InvoiceKey  string `json:"-" gorm:"type:text"`
	AdminKey    string `json:"-" gorm:"type:text"`

	// OpenNode credentials.
	ReadAPIKey string `json:"-" gorm:"type:text"`

	// System-issued routing keys; each maps to exactly one record.
	ProviderInvoiceKey string `json:"provider_invoice_key" gorm:"type:varchar(40);uniqueIndex;not null"`
	ProviderAdminKey   string `json:"provider_admin_key" gorm:"type:varchar(40);uniqueIndex;not null"`

	// Position preserves insertion order; set-default-provider addresses
	// records by this index.
	Position  int       `json:"position" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (FundingProvider) TableName() string { return "funding_providers" }

// Credentials is a decrypted view of a FundingProvider, handed to the
// payment adapters and never stored.
type Credentials struct {
	InstanceURL string
	InvoiceKey  string
	AdminKey    string
	ReadAPIKey  string
}
