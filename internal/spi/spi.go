// Package spi defines the ASPSP service provider interface used by the SCA flows
// and a mock implementation with fixed test credentials.
package spi

import (
	"context"
	"errors"

	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
)

// ErrUnknownMethod is returned when an authentication method is not offered to the PSU.
var ErrUnknownMethod = errors.New("unknown authentication method")

// AuthenticationMethod is an SCA method offered by the ASPSP.
type AuthenticationMethod struct {
	ID               string `json:"authenticationMethodId"`
	Type             string `json:"authenticationType"`
	Name             string `json:"name,omitempty"`
	DecoupledCapable bool   `json:"decoupled"`
}

// PsuAuthorisation is the outcome of a PSU login at the ASPSP.
type PsuAuthorisation struct {
	Authorised bool
	// Methods lists the SCA methods available to the PSU. An authorised PSU
	// without methods is exempted from SCA.
	Methods []AuthenticationMethod
}

// Challenge is the data sent to the PSU after an authorisation code was requested.
type Challenge struct {
	MethodID string `json:"authenticationMethodId"`
	Data     string `json:"challengeData,omitempty"`
	Message  string `json:"psuMessage,omitempty"`
}

// AuthorisationSPI is the ASPSP side of the SCA flows.
type AuthorisationSPI interface {
	AuthorisePsu(ctx context.Context, psu model.PsuIdData, password string) (*PsuAuthorisation, error)
	RequestAuthorisationCode(ctx context.Context, psu model.PsuIdData, methodID string) (*Challenge, error)
	VerifyScaAuthorisation(ctx context.Context, psu model.PsuIdData, methodID, authenticationData string) (bool, error)
	StartDecoupled(ctx context.Context, psu model.PsuIdData, methodID string) (*Challenge, error)
}

// FindMethod returns the method with id from methods.
func FindMethod(methods []AuthenticationMethod, id string) (AuthenticationMethod, bool) {
	for _, m := range methods {
		if m.ID == id {
			return m, true
		}
	}
	return AuthenticationMethod{}, false
}
