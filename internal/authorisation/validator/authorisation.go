package validator

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/psu"
)

var (
	// ErrPsuNotAuthorised means the PSU is not one of the PSUs of the consent or payment.
	ErrPsuNotAuthorised = errors.New("PSU is not linked to the resource")
	// ErrAlreadyAuthorised means the PSU already completed SCA for the resource.
	ErrAlreadyAuthorised = errors.New("PSU already authorised the resource")
)

// ValidateCreateRequest checks the shape of a start-authorisation request.
func ValidateCreateRequest(req model.CreateAuthorisationRequest) error {
	if req.ScaApproach != "" {
		if _, ok := model.ParseScaApproach(req.ScaApproach); !ok {
			return fmt.Errorf("unknown scaApproach %q", req.ScaApproach)
		}
	}
	if err := validateRedirectURI("redirectUri", req.RedirectURI); err != nil {
		return err
	}
	return validateRedirectURI("nokRedirectUri", req.NokRedirectURI)
}

// CheckPsu accepts any PSU while the resource has none, and otherwise only its own PSUs.
func CheckPsu(resourcePsus []consentmodel.PsuIdData, candidate consentmodel.PsuIdData) error {
	if candidate.IsEmpty() || len(resourcePsus) == 0 {
		return nil
	}
	if !psu.Contains(resourcePsus, candidate) {
		return ErrPsuNotAuthorised
	}
	return nil
}

// CheckNotAlreadyAuthorised rejects a new authorisation for a PSU whose earlier one
// succeeded.
func CheckNotAlreadyAuthorised(existing []*model.Authorisation, candidate consentmodel.PsuIdData) error {
	if candidate.IsEmpty() {
		return nil
	}
	for _, authorisation := range existing {
		if authorisation.ScaStatus.IsSuccessful() && psu.Equals(authorisation.PsuData, candidate) {
			return ErrAlreadyAuthorised
		}
	}
	return nil
}

func validateRedirectURI(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	return nil
}
