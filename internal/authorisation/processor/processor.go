// Package processor advances SCA authorisations through their status machine.
//
// A Chain walks an ordered table of (status, step) pairs, runs the business step
// registered for the authorisation's current SCA status on the approach service
// selected by the Registry, and then always lets the approach service persist the
// result.
package processor

import (
	"context"
	"fmt"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// Request is the input of one chain run.
type Request struct {
	Type          model.AuthorisationType
	ScaApproach   model.ScaApproach
	ScaStatus     model.ScaStatus
	Update        model.UpdatePsuDataRequest
	Authorisation *model.Authorisation
}

// NewRequest builds a chain request for the current state of authorisation.
func NewRequest(authorisation *model.Authorisation, update model.UpdatePsuDataRequest) *Request {
	return &Request{
		Type:          authorisation.Type,
		ScaApproach:   authorisation.ScaApproach,
		ScaStatus:     authorisation.ScaStatus,
		Update:        update,
		Authorisation: authorisation,
	}
}

// Response is the outcome of a business step. Error holds a business failure
// that is reported to the PSU; the status in ScaStatus is persisted either way.
type Response struct {
	ScaStatus        model.ScaStatus
	PsuData          consentmodel.PsuIdData
	ChosenMethod     *spi.AuthenticationMethod
	AvailableMethods []spi.AuthenticationMethod
	ChallengeData    string
	PsuMessage       string
	Error            *serviceerror.ServiceError
}

// HasError reports whether the step failed.
func (r *Response) HasError() bool {
	return r.Error != nil
}

// ApproachService implements the SCA steps of one approach.
type ApproachService interface {
	DoScaReceived(ctx context.Context, req *Request) *Response
	DoScaPsuIdentified(ctx context.Context, req *Request) *Response
	DoScaPsuAuthenticated(ctx context.Context, req *Request) *Response
	DoScaMethodSelected(ctx context.Context, req *Request) *Response
	DoScaStarted(ctx context.Context, req *Request) *Response
	DoScaFinalised(ctx context.Context, req *Request) *Response
	DoScaFailed(ctx context.Context, req *Request) *Response
	DoScaExempted(ctx context.Context, req *Request) *Response
	UpdateAuthorisation(ctx context.Context, req *Request, resp *Response) error
}

// AuthorisationWriter persists an authorisation after a chain step.
type AuthorisationWriter interface {
	SaveAuthorisation(ctx context.Context, authorisation *model.Authorisation) error
}

// ConfigurationError reports a chain that cannot serve a request because no step
// or approach service is registered for it. It is a deployment defect and is never
// reported to the PSU as a business failure.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("authorisation chain misconfigured: %s", e.Reason)
}
