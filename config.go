package goCognito

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the complete engine configuration. Every field can be loaded from the
// environment with [LoadConfigFromEnv].
type Config struct {
	UserPool     UserPoolConfig
	IdentityPool IdentityPoolConfig
	Storage      StorageConfig
	Session      SessionConfig
	Identity     IdentityConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
USER POOL CONFIG
====================================
*/

// UserPoolConfig identifies the user pool and its app client.
type UserPoolConfig struct {
	Region     string `env:"AWS_REGION"`
	UserPoolID string `env:"AWS_USER_POOL_ID"`
	ClientID   string `env:"AWS_USER_POOL_CLIENT_ID"`
	// ClientSecret is only set for app clients created with a secret.
	ClientSecret string `env:"AWS_USER_POOL_CLIENT_SECRET"`
}

/*
====================================
IDENTITY POOL CONFIG
====================================
*/

// IdentityPoolConfig enables service credentials. An empty IdentityPoolID disables them.
type IdentityPoolConfig struct {
	IdentityPoolID string `env:"AWS_IDENTITY_POOL_ID"`
	// CredentialsRefreshWindow refreshes service credentials this long before they expire.
	CredentialsRefreshWindow time.Duration `env:"COGNITO_CREDENTIALS_REFRESH_WINDOW" envDefault:"5m"`
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig controls the persisted session namespace.
type StorageConfig struct {
	// StoreKey is the namespace all cached session data is grouped under.
	StoreKey string `env:"COGNITO_STORE_KEY" envDefault:"cognito"`
	// RedisPrefix prefixes the namespace key when the store is Redis.
	RedisPrefix string `env:"COGNITO_REDIS_PREFIX" envDefault:"gcs"`
	// TTL expires an idle Redis namespace. Zero keeps it forever.
	TTL time.Duration `env:"COGNITO_STORE_TTL" envDefault:"0s"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session refresh.
type SessionConfig struct {
	// AllowOfflineRefresh keeps an expired cached session when its refresh fails
	// because the provider is unreachable.
	AllowOfflineRefresh bool `env:"COGNITO_ALLOW_OFFLINE_REFRESH" envDefault:"false"`
}

/*
====================================
IDENTITY CONFIG
====================================
*/

// IdentityConfig controls identity provider registration.
type IdentityConfig struct {
	ProviderName string `env:"COGNITO_PROVIDER_NAME" envDefault:"cognito"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"COGNITO_AUDIT_ENABLED" envDefault:"false"`
	BufferSize int  `env:"COGNITO_AUDIT_BUFFER_SIZE" envDefault:"1024"`
	DropIfFull bool `env:"COGNITO_AUDIT_DROP_IF_FULL" envDefault:"true"`
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `env:"COGNITO_METRICS_ENABLED" envDefault:"false"`
	EnableLatencyHistograms bool `env:"COGNITO_METRICS_LATENCY_HISTOGRAMS" envDefault:"false"`
}

func defaultConfig() Config {
	return Config{
		IdentityPool: IdentityPoolConfig{
			CredentialsRefreshWindow: 5 * time.Minute,
		},
		Storage: StorageConfig{
			StoreKey:    "cognito",
			RedisPrefix: "gcs",
		},
		Identity: IdentityConfig{
			ProviderName: "cognito",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

// DefaultConfig returns the defaults applied by [New]. UserPool settings are left empty.
func DefaultConfig() Config {
	return defaultConfig()
}

// LoadConfigFromEnv reads a Config from the process environment.
func LoadConfigFromEnv() (Config, error) {
	return loadConfigFromEnv(env.Options{})
}

func loadConfigFromEnv(opts env.Options) (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	// User pool
	if c.UserPool.Region == "" {
		return fmt.Errorf("%w: UserPool Region is required", ErrInvalidConfig)
	}
	if c.UserPool.UserPoolID == "" {
		return fmt.Errorf("%w: UserPool UserPoolID is required", ErrInvalidConfig)
	}
	if c.UserPool.ClientID == "" {
		return fmt.Errorf("%w: UserPool ClientID is required", ErrInvalidConfig)
	}

	// Identity pool
	if c.IdentityPool.CredentialsRefreshWindow < 0 {
		return fmt.Errorf("%w: IdentityPool CredentialsRefreshWindow must be >= 0", ErrInvalidConfig)
	}

	// Storage
	if c.Storage.StoreKey == "" {
		return fmt.Errorf("%w: Storage StoreKey is required", ErrInvalidConfig)
	}
	if c.Storage.TTL < 0 {
		return fmt.Errorf("%w: Storage TTL must be >= 0", ErrInvalidConfig)
	}

	// Identity
	if c.Identity.ProviderName == "" {
		return fmt.Errorf("%w: Identity ProviderName is required", ErrInvalidConfig)
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: Audit BufferSize must be > 0 when audit is enabled", ErrInvalidConfig)
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return fmt.Errorf("%w: Metrics EnableLatencyHistograms requires Metrics Enabled", ErrInvalidConfig)
	}

	return nil
}
