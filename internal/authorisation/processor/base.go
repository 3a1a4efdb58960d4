package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	consentmodel "github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
	"github.com/wso2/psd2-consent-mgt/internal/system/log"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// baseService holds what every approach shares: persistence of the step outcome
// and the responses for steps that cannot run in the current status.
type baseService struct {
	writer AuthorisationWriter
	now    func() time.Time
	logger *log.Logger
}

func newBaseService(writer AuthorisationWriter, now func() time.Time, component string) baseService {
	return baseService{
		writer: writer,
		now:    now,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, component)),
	}
}

func (b *baseService) DoScaFinalised(_ context.Context, req *Request) *Response {
	return finalisedStep(req)
}

func (b *baseService) DoScaFailed(_ context.Context, req *Request) *Response {
	return finalisedStep(req)
}

func (b *baseService) DoScaExempted(_ context.Context, req *Request) *Response {
	return finalisedStep(req)
}

// UpdateAuthorisation copies the step outcome onto the authorisation and saves it.
func (b *baseService) UpdateAuthorisation(ctx context.Context, req *Request, resp *Response) error {
	authorisation := req.Authorisation
	if resp.ScaStatus != "" && resp.ScaStatus != authorisation.ScaStatus {
		authorisation.SetStatus(resp.ScaStatus, utils.TimeToMillis(b.now()))
	}
	if authorisation.PsuData.IsEmpty() && resp.PsuData.IsNotEmpty() {
		authorisation.PsuData = resp.PsuData
	}
	if resp.ChosenMethod != nil {
		authorisation.AuthenticationMethodID = resp.ChosenMethod.ID
	}
	if resp.ChallengeData != "" {
		authorisation.ScaAuthenticationData = resp.ChallengeData
	}
	return b.writer.SaveAuthorisation(ctx, authorisation)
}

func finalisedStep(req *Request) *Response {
	return stepError(req, serviceerror.ScaError, codes.StatusInvalid,
		fmt.Sprintf("authorisation is already %s", req.ScaStatus))
}

// stepError keeps the current status and reports err.
func stepError(req *Request, base serviceerror.ServiceError, messageCode, description string) *Response {
	return &Response{
		ScaStatus: req.ScaStatus,
		PsuData:   effectivePsu(req),
		Error:     serviceerror.WithMessageCode(base, messageCode, description),
	}
}

// failedStep moves the authorisation to FAILED and reports err.
func failedStep(req *Request, messageCode, description string) *Response {
	return &Response{
		ScaStatus: model.ScaStatusFailed,
		PsuData:   effectivePsu(req),
		Error:     serviceerror.WithMessageCode(serviceerror.ScaError, messageCode, description),
	}
}

func spiFailure(req *Request, err error) *Response {
	return &Response{
		ScaStatus: req.ScaStatus,
		PsuData:   effectivePsu(req),
		Error:     serviceerror.CustomServiceError(serviceerror.TechnicalError, fmt.Sprintf("ASPSP call failed: %v", err)),
	}
}

// effectivePsu prefers the PSU of the update over the one stored on the authorisation.
func effectivePsu(req *Request) consentmodel.PsuIdData {
	if req.Update.PsuData.IsNotEmpty() {
		return req.Update.PsuData
	}
	if req.Authorisation != nil {
		return req.Authorisation.PsuData
	}
	return consentmodel.PsuIdData{}
}

// authenticatePsu identifies the PSU and, when a password was sent, logs it in at
// the ASPSP. A nil login result with a nil response means only identification
// happened.
func authenticatePsu(ctx context.Context, client spi.AuthorisationSPI, req *Request) (*spi.PsuAuthorisation, *Response) {
	psu := effectivePsu(req)
	if psu.IsEmpty() {
		return nil, stepError(req, serviceerror.ScaError, codes.FormatError, "PSU-ID is required")
	}
	if req.Update.Password == "" {
		return nil, &Response{ScaStatus: model.ScaStatusPsuIdentified, PsuData: psu}
	}

	login, err := client.AuthorisePsu(ctx, psu, req.Update.Password)
	if err != nil {
		return nil, spiFailure(req, err)
	}
	if !login.Authorised {
		return nil, failedStep(req, codes.PsuCredentialsInvalid, "PSU credentials are invalid")
	}
	if len(login.Methods) == 0 {
		return nil, &Response{ScaStatus: model.ScaStatusExempted, PsuData: psu}
	}
	return login, nil
}

// verifyAuthenticationData checks the TAN or confirmation code of the selected method.
func verifyAuthenticationData(ctx context.Context, client spi.AuthorisationSPI, req *Request) *Response {
	psu := effectivePsu(req)
	methodID := req.Authorisation.AuthenticationMethodID
	ok, err := client.VerifyScaAuthorisation(ctx, psu, methodID, req.Update.ScaAuthenticationData)
	if errors.Is(err, spi.ErrUnknownMethod) {
		return stepError(req, serviceerror.ScaError, codes.ScaMethodUnknown, err.Error())
	}
	if err != nil {
		return spiFailure(req, err)
	}
	if !ok {
		return failedStep(req, codes.ScaInvalid, "authentication data is invalid")
	}
	return &Response{ScaStatus: model.ScaStatusFinalised, PsuData: psu}
}
