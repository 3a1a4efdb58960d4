package model

import (
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// Authorisation is one PSU's SCA attempt for a consent or payment. ParentID refers
// to the consent or payment; the parent does not hold the authorisation.
type Authorisation struct {
	AuthorisationID                  string
	OrgID                            string
	ParentID                         string
	Type                             AuthorisationType
	ScaStatus                        ScaStatus
	ScaApproach                      ScaApproach
	PsuData                          consentmodel.PsuIdData
	AuthenticationMethodID           string
	ScaAuthenticationData            string
	RedirectURI                      string
	NokRedirectURI                   string
	RedirectURLExpirationTimestamp   int64
	AuthorisationExpirationTimestamp int64
	CreationTimestamp                int64
	StatusChangeTimestamp            int64
}

// SetStatus moves the authorisation to status and stamps the change time.
func (a *Authorisation) SetStatus(status ScaStatus, nowMillis int64) {
	a.ScaStatus = status
	a.StatusChangeTimestamp = nowMillis
}

// IsAuthorisationExpired reports whether the authorisation window has passed.
func (a *Authorisation) IsAuthorisationExpired(nowMillis int64) bool {
	return a.AuthorisationExpirationTimestamp > 0 && a.AuthorisationExpirationTimestamp < nowMillis
}

// IsRedirectURLExpired reports whether the redirect link handed to the PSU has expired.
func (a *Authorisation) IsRedirectURLExpired(nowMillis int64) bool {
	return a.RedirectURLExpirationTimestamp > 0 && a.RedirectURLExpirationTimestamp < nowMillis
}
