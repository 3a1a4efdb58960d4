package config

import "strings"

// SettingsProvider exposes the ASPSP profile values consumed by the consent,
// payment and authorisation services.
type SettingsProvider interface {
	MaxConsentValidityDays() int
	NotConfirmedConsentExpirationTimeMs() int64
	NotConfirmedPaymentExpirationTimeMs() int64
	RedirectURLExpirationTimeMs() int64
	AuthorisationExpirationTimeMs() int64
	ScaRedirectOkURL() string
	ScaRedirectNokURL() string
	DefaultScaApproach() string
	IsScaApproachSupported(approach string) bool
	MultilevelScaRequired() bool
	PsuInInitialRequestMandated() bool
	ChecksumVerificationEnabled() bool
}

type aspspSettings struct {
	cfg AspspConfig
}

// NewSettingsProvider wraps an AspspConfig in a SettingsProvider.
func NewSettingsProvider(cfg AspspConfig) SettingsProvider {
	return &aspspSettings{cfg: cfg}
}

func (a *aspspSettings) MaxConsentValidityDays() int {
	return a.cfg.MaxConsentValidityDays
}

func (a *aspspSettings) NotConfirmedConsentExpirationTimeMs() int64 {
	return a.cfg.NotConfirmedConsentExpirationTimeMs
}

func (a *aspspSettings) NotConfirmedPaymentExpirationTimeMs() int64 {
	return a.cfg.NotConfirmedPaymentExpirationTimeMs
}

func (a *aspspSettings) RedirectURLExpirationTimeMs() int64 {
	return a.cfg.RedirectURLExpirationTimeMs
}

func (a *aspspSettings) AuthorisationExpirationTimeMs() int64 {
	return a.cfg.AuthorisationExpirationTimeMs
}

func (a *aspspSettings) ScaRedirectOkURL() string {
	return a.cfg.ScaRedirectOkURL
}

func (a *aspspSettings) ScaRedirectNokURL() string {
	return a.cfg.ScaRedirectNokURL
}

// DefaultScaApproach returns the first configured approach, REDIRECT when none is set.
func (a *aspspSettings) DefaultScaApproach() string {
	if len(a.cfg.SupportedScaApproaches) == 0 {
		return "REDIRECT"
	}
	return strings.ToUpper(a.cfg.SupportedScaApproaches[0])
}

func (a *aspspSettings) IsScaApproachSupported(approach string) bool {
	for _, supported := range a.cfg.SupportedScaApproaches {
		if strings.EqualFold(supported, approach) {
			return true
		}
	}
	return false
}

func (a *aspspSettings) MultilevelScaRequired() bool {
	return a.cfg.MultilevelScaRequired
}

func (a *aspspSettings) PsuInInitialRequestMandated() bool {
	return a.cfg.PsuInInitialRequestMandated
}

func (a *aspspSettings) ChecksumVerificationEnabled() bool {
	return a.cfg.ChecksumVerificationEnabled
}
