package processor

import (
	"context"
	"errors"
	"time"

	"github.com/wso2/psd2-consent-mgt/internal/authorisation/model"
	"github.com/wso2/psd2-consent-mgt/internal/spi"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/codes"
	"github.com/wso2/psd2-consent-mgt/internal/system/error/serviceerror"
)

// EmbeddedService runs SCA entirely through the TPP: password, method selection
// and TAN are all sent as PSU data updates.
type EmbeddedService struct {
	baseService
	spi spi.AuthorisationSPI
}

// NewEmbeddedService creates the embedded approach service.
func NewEmbeddedService(client spi.AuthorisationSPI, writer AuthorisationWriter, now func() time.Time) *EmbeddedService {
	return &EmbeddedService{
		baseService: newBaseService(writer, now, "EmbeddedScaService"),
		spi:         client,
	}
}

func (s *EmbeddedService) DoScaReceived(ctx context.Context, req *Request) *Response {
	return s.authenticate(ctx, req)
}

func (s *EmbeddedService) DoScaPsuIdentified(ctx context.Context, req *Request) *Response {
	return s.authenticate(ctx, req)
}

func (s *EmbeddedService) DoScaPsuAuthenticated(ctx context.Context, req *Request) *Response {
	if req.Update.AuthenticationMethodID == "" {
		return stepError(req, serviceerror.ScaError, codes.FormatError, "authenticationMethodId is required")
	}
	return s.selectMethod(ctx, req, req.Update.AuthenticationMethodID)
}

func (s *EmbeddedService) DoScaMethodSelected(ctx context.Context, req *Request) *Response {
	if req.Update.ScaAuthenticationData == "" {
		return stepError(req, serviceerror.ScaError, codes.FormatError, "scaAuthenticationData is required")
	}
	return verifyAuthenticationData(ctx, s.spi, req)
}

func (s *EmbeddedService) DoScaStarted(_ context.Context, req *Request) *Response {
	return stepError(req, serviceerror.ScaError, codes.StatusInvalid, "embedded authorisations are never started out of band")
}

func (s *EmbeddedService) authenticate(ctx context.Context, req *Request) *Response {
	login, resp := authenticatePsu(ctx, s.spi, req)
	if resp != nil {
		return resp
	}
	if len(login.Methods) == 1 {
		return s.selectMethod(ctx, req, login.Methods[0].ID)
	}
	return &Response{
		ScaStatus:        model.ScaStatusPsuAuthenticated,
		PsuData:          effectivePsu(req),
		AvailableMethods: login.Methods,
	}
}

func (s *EmbeddedService) selectMethod(ctx context.Context, req *Request, methodID string) *Response {
	challenge, err := s.spi.RequestAuthorisationCode(ctx, effectivePsu(req), methodID)
	if errors.Is(err, spi.ErrUnknownMethod) {
		return stepError(req, serviceerror.ScaError, codes.ScaMethodUnknown, err.Error())
	}
	if err != nil {
		return spiFailure(req, err)
	}
	return &Response{
		ScaStatus:     model.ScaStatusScaMethodSelected,
		PsuData:       effectivePsu(req),
		ChosenMethod:  &spi.AuthenticationMethod{ID: challenge.MethodID},
		ChallengeData: challenge.Data,
		PsuMessage:    challenge.Message,
	}
}
