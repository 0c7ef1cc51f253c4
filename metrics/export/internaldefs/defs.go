package internaldefs

import (
	goCognito "github.com/MrEthical07/goCognito"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   goCognito.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   goCognito.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goCognito.MetricLoginSuccess, Name: "gocognito_login_success_total", Help: "Logins that produced a session."},
	{ID: goCognito.MetricLoginFailure, Name: "gocognito_login_failure_total", Help: "Login exchanges rejected by the provider."},
	{ID: goCognito.MetricMFARequired, Name: "gocognito_mfa_required_total", Help: "Logins that required an MFA code."},
	{ID: goCognito.MetricNewPasswordRequired, Name: "gocognito_new_password_required_total", Help: "Logins that required a password change."},
	{ID: goCognito.MetricMFASuccess, Name: "gocognito_mfa_success_total", Help: "Accepted MFA codes."},
	{ID: goCognito.MetricMFAFailure, Name: "gocognito_mfa_failure_total", Help: "Rejected MFA codes."},
	{ID: goCognito.MetricRegistrationSuccess, Name: "gocognito_registration_success_total", Help: "Successful sign-ups."},
	{ID: goCognito.MetricRegistrationFailure, Name: "gocognito_registration_failure_total", Help: "Rejected sign-ups."},
	{ID: goCognito.MetricPasswordResetRequest, Name: "gocognito_password_reset_request_total", Help: "Password reset codes sent."},
	{ID: goCognito.MetricPasswordResetConfirm, Name: "gocognito_password_reset_confirm_total", Help: "Completed password resets."},
	{ID: goCognito.MetricPasswordChange, Name: "gocognito_password_change_total", Help: "Password changes by signed-in users."},
	{ID: goCognito.MetricIdentityAuthenticated, Name: "gocognito_identity_authenticated_total", Help: "Identity reads that yielded an authenticated identity."},
	{ID: goCognito.MetricIdentityAnonymous, Name: "gocognito_identity_anonymous_total", Help: "Identity reads that yielded the unauthenticated identity."},
	{ID: goCognito.MetricSessionRefreshSuccess, Name: "gocognito_session_refresh_success_total", Help: "Expired sessions refreshed."},
	{ID: goCognito.MetricSessionRefreshFailure, Name: "gocognito_session_refresh_failure_total", Help: "Session refreshes that degraded the identity."},
	{ID: goCognito.MetricServiceCredentialsRefresh, Name: "gocognito_service_credentials_refresh_total", Help: "Service credentials obtained from the identity pool."},
	{ID: goCognito.MetricServiceCredentialsFailure, Name: "gocognito_service_credentials_failure_total", Help: "Failed service credential requests."},
	{ID: goCognito.MetricIdentityUpdate, Name: "gocognito_identity_update_total", Help: "Sessions bound through Update."},
	{ID: goCognito.MetricIdentityClear, Name: "gocognito_identity_clear_total", Help: "Clear operations."},
}

// LabeledSeries is one labelled series of a [LabeledCounterDef], read from counter ID.
type LabeledSeries struct {
	ID    goCognito.MetricID
	Value string
}

// LabeledCounterDef regroups engine counters under one family split by Label.
type LabeledCounterDef struct {
	Name   string
	Help   string
	Label  string
	Series []LabeledSeries
}

// LabeledCounterDefs lists the identity read families. A degraded read is one that fell
// back to the unauthenticated identity because a remote stage failed.
var LabeledCounterDefs = []LabeledCounterDef{
	{
		Name:  "gocognito_identity_reads_total",
		Help:  "GetIdentity results by outcome.",
		Label: "result",
		Series: []LabeledSeries{
			{ID: goCognito.MetricIdentityAuthenticated, Value: "authenticated"},
			{ID: goCognito.MetricIdentityAnonymous, Value: "anonymous"},
		},
	},
	{
		Name:  "gocognito_identity_degraded_total",
		Help:  "Identity reads degraded to anonymous, by failing stage.",
		Label: "stage",
		Series: []LabeledSeries{
			{ID: goCognito.MetricSessionRefreshFailure, Value: "session_refresh"},
			{ID: goCognito.MetricServiceCredentialsFailure, Value: "service_credentials"},
		},
	},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goCognito.MetricGetIdentityLatency, Name: "gocognito_get_identity_latency_seconds", Help: "GetIdentity latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the engine buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are HistogramBounds spelled for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed 8-bucket array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
