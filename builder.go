package goCognito

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/goCognito/cognito"
	internalaudit "github.com/MrEthical07/goCognito/internal/audit"
	"github.com/MrEthical07/goCognito/session"
	"github.com/MrEthical07/goCognito/storage"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. A Builder is single-use: a second Build returns
// ErrBuilderUsed.
type Builder struct {
	config Config

	store storage.KeyValueStore
	redis redis.UniversalClient

	userPoolService    cognito.UserPoolService
	credentialsService cognito.CredentialsService

	logger     *slog.Logger
	auditSink  AuditSink
	classifier RegistrationClassifier

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore backs the session namespace with store. It takes precedence over WithRedis.
func (b *Builder) WithStore(store storage.KeyValueStore) *Builder {
	b.store = store
	return b
}

// WithRedis backs the session namespace with a Redis hash.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserPoolService replaces the SDK user pool client, typically with a fake in tests.
func (b *Builder) WithUserPoolService(svc cognito.UserPoolService) *Builder {
	b.userPoolService = svc
	return b
}

// WithCredentialsService replaces the SDK identity pool client.
func (b *Builder) WithCredentialsService(svc cognito.CredentialsService) *Builder {
	b.credentialsService = svc
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithRegistrationClassifier replaces [DefaultRegistrationClassifier].
func (b *Builder) WithRegistrationClassifier(c RegistrationClassifier) *Builder {
	b.classifier = c
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. Services not supplied are
// created from the configuration with the AWS SDK, which is why Build takes a ctx.
func (b *Builder) Build(ctx context.Context) (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := cognito.Options{
		Region:         cfg.UserPool.Region,
		UserPoolID:     cfg.UserPool.UserPoolID,
		ClientID:       cfg.UserPool.ClientID,
		ClientSecret:   cfg.UserPool.ClientSecret,
		IdentityPoolID: cfg.IdentityPool.IdentityPoolID,
	}

	// -------- REMOTE SERVICES --------
	userPoolService := b.userPoolService
	if userPoolService == nil {
		client, err := cognito.New(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("user pool client: %w", err)
		}
		userPoolService = client
	}

	credentialsService := b.credentialsService
	if credentialsService == nil && cfg.IdentityPool.IdentityPoolID != "" {
		pool, err := cognito.NewIdentityPool(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("identity pool client: %w", err)
		}
		credentialsService = pool
	}

	// -------- STORAGE --------
	store := b.store
	if store == nil && b.redis != nil {
		store = storage.NewRedisStore(b.redis, cfg.Storage.RedisPrefix, cfg.Storage.TTL)
	}

	var (
		adapter *storage.Adapter
		backing session.Storage
	)
	if store != nil {
		adapter = storage.NewAdapter(store, cfg.Storage.StoreKey, logger)
		backing = adapter
	} else {
		backing = session.NewMemoryStorage()
	}

	// -------- TELEMETRY --------
	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	tel := newTelemetry(NewMetrics(cfg.Metrics), dispatcher, logger)

	pool := newUserPool(cfg.UserPool, userPoolService, backing)
	provider := newIdentityProvider(cfg, identityProviderDeps{
		pool:        pool,
		storage:     backing,
		adapter:     adapter,
		credentials: credentialsService,
		telemetry:   tel,
	})

	registry := NewProviderRegistry()
	if err := registry.AddProvider(cfg.Identity.ProviderName, provider); err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:     cfg,
		pool:       pool,
		provider:   provider,
		registry:   registry,
		adapter:    adapter,
		audit:      dispatcher,
		tel:        tel,
		classifier: b.classifier,
	}, nil
}
