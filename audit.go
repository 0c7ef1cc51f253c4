package goCognito

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goCognito/internal/audit"
	"github.com/google/uuid"
)

// AuditEvent is one audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers audit events in a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink logs audit events.
type SlogSink = internalaudit.SlogSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}

const (
	auditEventLoginSuccess           = "login_success"
	auditEventLoginFailure           = "login_failure"
	auditEventMFARequired            = "mfa_required"
	auditEventMFASuccess             = "mfa_success"
	auditEventMFAFailure             = "mfa_failure"
	auditEventPasswordChangeRequired = "password_change_required"
	auditEventRegistrationSuccess    = "registration_success"
	auditEventRegistrationFailure    = "registration_failure"
	auditEventRegistrationConfirm    = "registration_confirm"
	auditEventPasswordResetRequest   = "password_reset_request"
	auditEventPasswordResetConfirm   = "password_reset_confirm"
	auditEventPasswordChange         = "password_change"
	auditEventMFAPreferenceChange    = "mfa_preference_change"
	auditEventSessionRefreshSuccess  = "session_refresh_success"
	auditEventSessionRefreshFailure  = "session_refresh_failure"
	auditEventIdentityUpdate         = "identity_update"
	auditEventIdentityClear          = "identity_clear"
	auditEventIdentityDegraded       = "identity_degraded"
)

// telemetry bundles the metrics, audit and log outputs shared by the identity
// provider and every authenticator of one engine.
type telemetry struct {
	metrics *Metrics
	audit   *internalaudit.Dispatcher
	logger  *slog.Logger
	now     func() time.Time
}

func newTelemetry(metrics *Metrics, audit *internalaudit.Dispatcher, logger *slog.Logger) *telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &telemetry{
		metrics: metrics,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

func (t *telemetry) inc(id MetricID) {
	if t == nil {
		return
	}
	t.metrics.Inc(id)
}

func (t *telemetry) observe(id MetricID, d time.Duration) {
	if t == nil {
		return
	}
	t.metrics.Observe(id, d)
}

// emitAudit records one event. errCode is the provider error code of a failed
// exchange; metadata may be nil.
func (t *telemetry) emitAudit(ctx context.Context, eventType string, success bool, username, errCode string, metadata map[string]string) {
	if t == nil || t.audit == nil {
		return
	}

	t.audit.Emit(ctx, AuditEvent{
		EventID:       uuid.NewString(),
		CorrelationID: correlationIDFromContext(ctx),
		Timestamp:     t.now().UTC(),
		EventType:     eventType,
		Username:      username,
		Success:       success,
		Error:         errCode,
		Metadata:      metadata,
	})
}
