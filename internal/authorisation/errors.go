package authorisation

import (
	"fmt"

	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// RedirectURLExpiredError is returned when the PSU follows a redirect link after it
// expired. The authorisation has been failed; NokRedirectURI is where the PSU goes.
type RedirectURLExpiredError struct {
	AuthorisationID string
	NokRedirectURI  string
}

func (e *RedirectURLExpiredError) Error() string {
	return fmt.Sprintf("redirect link of authorisation %s has expired", e.AuthorisationID)
}

// AuthorisationExpiredError is returned when the authorisation window closed before
// the PSU finished SCA.
type AuthorisationExpiredError struct {
	AuthorisationID string
	NokRedirectURI  string
}

func (e *AuthorisationExpiredError) Error() string {
	return fmt.Sprintf("authorisation %s has expired", e.AuthorisationID)
}

// LookupError carries any other failure of a redirect lookup.
type LookupError struct {
	ServiceError *serviceerror.ServiceError
}

func (e *LookupError) Error() string {
	return e.ServiceError.ErrorDescription
}
