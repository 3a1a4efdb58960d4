package model

import (
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
)

// CreateAuthorisationRequest is the body of a start-authorisation call.
type CreateAuthorisationRequest struct {
	PsuData        consentmodel.PsuIdData `json:"psuData"`
	ScaApproach    string                 `json:"scaApproach,omitempty"`
	RedirectURI    string                 `json:"redirectUri,omitempty"`
	NokRedirectURI string                 `json:"nokRedirectUri,omitempty"`
}

// UpdatePsuDataRequest carries the PSU input for the next SCA step.
type UpdatePsuDataRequest struct {
	PsuData                consentmodel.PsuIdData `json:"psuData"`
	Password               string                 `json:"password,omitempty"`
	AuthenticationMethodID string                 `json:"authenticationMethodId,omitempty"`
	ScaAuthenticationData  string                 `json:"scaAuthenticationData,omitempty"`
}

// UpdateAuthenticationMethodRequest is the body of the PSU method selection call.
type UpdateAuthenticationMethodRequest struct {
	AuthenticationMethodID string `json:"authenticationMethodId"`
}

// CreateAuthorisationResponse is returned when an authorisation was started.
type CreateAuthorisationResponse struct {
	AuthorisationID string      `json:"authorisationId"`
	ScaStatus       ScaStatus   `json:"scaStatus"`
	ScaApproach     ScaApproach `json:"scaApproach"`
	RedirectID      string      `json:"redirectId"`
	RedirectURI     string      `json:"redirectUri,omitempty"`
	NokRedirectURI  string      `json:"nokRedirectUri,omitempty"`
}

// UpdatePsuDataResponse reports the SCA status after a PSU step.
type UpdatePsuDataResponse struct {
	AuthorisationID     string                     `json:"authorisationId"`
	ScaStatus           ScaStatus                  `json:"scaStatus"`
	PsuData             consentmodel.PsuIdData     `json:"psuData"`
	ChosenScaMethod     *spi.AuthenticationMethod  `json:"chosenScaMethod,omitempty"`
	AvailableScaMethods []spi.AuthenticationMethod `json:"scaMethods,omitempty"`
	ChallengeData       string                     `json:"challengeData,omitempty"`
	PsuMessage          string                     `json:"psuMessage,omitempty"`
}

// ScaStatusResponse is the API view of an SCA status.
type ScaStatusResponse struct {
	AuthorisationID string    `json:"authorisationId"`
	ScaStatus       ScaStatus `json:"scaStatus"`
}

// AuthorisationResponse is the API view of an authorisation.
type AuthorisationResponse struct {
	AuthorisationID        string                 `json:"authorisationId"`
	ParentID               string                 `json:"parentId"`
	AuthorisationType      AuthorisationType      `json:"authorisationType"`
	ScaStatus              ScaStatus              `json:"scaStatus"`
	ScaApproach            ScaApproach            `json:"scaApproach"`
	PsuData                consentmodel.PsuIdData `json:"psuData"`
	AuthenticationMethodID string                 `json:"authenticationMethodId,omitempty"`
	RedirectURI            string                 `json:"redirectUri,omitempty"`
	NokRedirectURI         string                 `json:"nokRedirectUri,omitempty"`
}

// PsuDataAuthorisation pairs a PSU with the status of its authorisation.
type PsuDataAuthorisation struct {
	PsuID           string    `json:"psuId"`
	AuthorisationID string    `json:"authorisationId"`
	ScaStatus       ScaStatus `json:"scaStatus"`
}

// ResultResponse reports whether an update was applied.
type ResultResponse struct {
	Result bool `json:"result"`
}

// ToResponse maps an authorisation onto its API view.
func (a *Authorisation) ToResponse() AuthorisationResponse {
	return AuthorisationResponse{
		AuthorisationID:        a.AuthorisationID,
		ParentID:               a.ParentID,
		AuthorisationType:      a.Type,
		ScaStatus:              a.ScaStatus,
		ScaApproach:            a.ScaApproach,
		PsuData:                a.PsuData,
		AuthenticationMethodID: a.AuthenticationMethodID,
		RedirectURI:            a.RedirectURI,
		NokRedirectURI:         a.NokRedirectURI,
	}
}
